package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const etagCap = 64

// HandleFrontend serves the bundled single page app from FrontendDir.
// Existing files are served as is, other GET paths fall back to index.html.
func (s *ServerContext) HandleFrontend(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		fail(c, http.StatusNotFound, "Not Found")
		return
	}

	urlPath := path.Clean("/" + c.Request.URL.Path)
	if strings.HasPrefix(urlPath, "/api/") {
		fail(c, http.StatusNotFound, "Not Found")
		return
	}

	root := s.Config.FrontendDir
	if urlPath != "/" && s.serveFile(c, filepath.Join(root, filepath.FromSlash(urlPath)), "") {
		return
	}

	// missing assets are real 404s, client side routes get the app shell
	if strings.HasPrefix(urlPath, "/assets/") || path.Ext(urlPath) != "" {
		fail(c, http.StatusNotFound, "Not Found")
		return
	}

	if !s.serveFile(c, filepath.Join(root, "index.html"), "text/html; charset=utf-8") {
		fail(c, http.StatusNotFound, "Not Found")
	}
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(c *gin.Context, file, contentType string) bool {
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	if match := c.GetHeader("If-None-Match"); match == etag {
		c.Status(http.StatusNotModified)
		c.Writer.WriteHeaderNow()
		return true
	}

	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, no-cache")
	if contentType != "" {
		c.Header("Content-Type", contentType)
	}

	c.Status(http.StatusOK)
	http.ServeFile(c.Writer, c.Request, file)
	return true
}
