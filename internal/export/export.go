// Package export writes the JSON view model of every reachable route to disk.
package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/index"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/server"
	"git.home.luguber.info/inful/flatsite/internal/site"
)

// DocumentName is the file written for each route.
const DocumentName = "index.json"

// Result summarizes an export run.
type Result struct {
	Routes    int
	Documents int
}

// Routes lists the paths exported for the current generation: the root, the
// feed, every Path index key and every tag.
func Routes(ctx context.Context, s *site.Site) ([]string, error) {
	e, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	routes := []string{"/", "/Feed"}
	for _, key := range e.Index(index.PathIndex).Keys() {
		routes = append(routes, "/"+key)
	}
	for _, tag := range e.Index(index.TagsIndex).Keys() {
		routes = append(routes, "/Tag/"+tag)
	}
	return routes, nil
}

// Run dispatches every route and writes one document per page under outDir.
// Listings spanning several pages get page/<n>/index.json for n >= 2.
func Run(ctx context.Context, s *site.Site, outDir string) (Result, error) {
	var res Result
	routes, err := Routes(ctx, s)
	if err != nil {
		return res, err
	}
	for _, route := range routes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n, err := exportRoute(ctx, s, outDir, route)
		if err != nil {
			return res, err
		}
		res.Routes++
		res.Documents += n
	}
	slog.Info("Export finished", logfields.Count(res.Documents), slog.Int("routes", res.Routes), logfields.Path(outDir))
	return res, nil
}

func exportRoute(ctx context.Context, s *site.Site, outDir, route string) (int, error) {
	vm, err := s.Page(ctx, route, nil)
	if err != nil {
		if errors.HasCategory(err, errors.CategoryNotFound) {
			slog.Debug("Export skipped unrouted path", logfields.Path(route))
			return 0, nil
		}
		return 0, err
	}
	dir := filepath.Join(outDir, FilePath(route))
	if err := write(dir, server.NewPageResponse(vm)); err != nil {
		return 0, err
	}
	written := 1
	for page := 2; page <= vm.Paging.TotalPages(); page++ {
		pvm, err := s.Page(ctx, route, url.Values{site.PageParam: {strconv.Itoa(page)}})
		if err != nil {
			return written, err
		}
		if err := write(filepath.Join(dir, "page", strconv.Itoa(page)), server.NewPageResponse(pvm)); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// FilePath maps a route onto a relative directory. Segments are path-escaped so
// tag values cannot leave the output directory.
func FilePath(route string) string {
	var parts []string
	for seg := range strings.SplitSeq(strings.Trim(route, "/"), "/") {
		if seg == "" {
			continue
		}
		if seg == "." || seg == ".." {
			seg = strings.ReplaceAll(seg, ".", "%2E")
		} else {
			seg = url.PathEscape(seg)
		}
		parts = append(parts, seg)
	}
	return filepath.Join(parts...)
}

func write(dir string, doc server.PageResponse) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.FileSystemError("failed to create export directory").WithCause(err).WithContext("path", dir).Build()
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.InternalError("failed to encode page").WithCause(err).Build()
	}
	path := filepath.Join(dir, DocumentName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.FileSystemError("failed to write export document").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
