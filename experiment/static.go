package experiment

import (
	"net/http"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/kbukum/gonogo/errors"
	"github.com/kbukum/gonogo/server"
)

type mount struct {
	prefix string
	dir    string
}

// staticFiles serves files for unmatched GET and HEAD requests. Mounts are
// tried longest prefix first, then the public directory. Directories are
// served only through their index.html.
type staticFiles struct {
	fs     afero.Fs
	mounts []mount
}

func newStaticFiles(fsys afero.Fs, publicDir string, mounts map[string]string) *staticFiles {
	s := &staticFiles{fs: fsys}
	for prefix, dir := range mounts {
		s.mounts = append(s.mounts, mount{prefix: strings.TrimSuffix(prefix, "/"), dir: dir})
	}
	sort.Slice(s.mounts, func(i, j int) bool {
		return len(s.mounts[i].prefix) > len(s.mounts[j].prefix)
	})
	s.mounts = append(s.mounts, mount{prefix: "", dir: publicDir})
	return s
}

// resolve maps a URL path to a file path, or "" when no mount covers it.
func (s *staticFiles) resolve(urlPath string) string {
	clean := path.Clean("/" + urlPath)
	for _, m := range s.mounts {
		if m.prefix != "" && clean != m.prefix && !strings.HasPrefix(clean, m.prefix+"/") {
			continue
		}
		rel := strings.TrimPrefix(clean, m.prefix)
		return filepath.Join(m.dir, filepath.FromSlash(rel))
	}
	return ""
}

func (s *staticFiles) handle(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		server.RespondWithError(c, errors.NotFound("route", c.Request.Method+" "+c.Request.URL.Path))
		return
	}

	name := s.resolve(c.Request.URL.Path)
	f, err := s.open(name)
	if err != nil {
		server.RespondWithError(c, errors.NotFound("file", c.Request.URL.Path))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		server.RespondWithError(c, errors.Internal(err))
		return
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// open returns the regular file at name, or name/index.html for a directory.
func (s *staticFiles) open(name string) (afero.File, error) {
	if name == "" {
		return nil, afero.ErrFileNotFound
	}
	info, err := s.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		name = filepath.Join(name, "index.html")
		if info, err = s.fs.Stat(name); err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, afero.ErrFileNotFound
		}
	}
	return s.fs.Open(name)
}
