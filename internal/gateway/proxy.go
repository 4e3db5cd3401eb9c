package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/gin-gonic/gin"
)

// Proxy forwards /{name}-service/... requests to the matching backend with the prefix removed.
type Proxy struct {
	backends map[string]*httputil.ReverseProxy
	log      *logger.Logger
}

// NewProxy builds one reverse proxy per route. Keys are the path prefixes, e.g. "flight-service".
func NewProxy(routes map[string]string, log *logger.Logger) (*Proxy, error) {
	p := &Proxy{backends: make(map[string]*httputil.ReverseProxy, len(routes)), log: log}
	for name, raw := range routes {
		target, err := url.Parse(raw)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("invalid backend url for %s: %q", name, raw)
		}
		p.backends[name] = p.newReverseProxy(name, target)
	}
	return p, nil
}

func (p *Proxy) newReverseProxy(name string, target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
			_, rest := splitService(r.In.URL.Path)
			r.Out.URL.Path = singleJoin(target.Path, rest)
			r.Out.URL.RawPath = ""
		},
		ErrorHandler: func(w http.ResponseWriter, req *http.Request, err error) {
			p.log.Errorf("PROXY", "%s %s -> %s: %v", req.Method, req.URL.Path, name, err)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message":"Service unavailable"}`))
		},
	}
}

func (p *Proxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name, _ := splitService(c.Request.URL.Path)
		backend, ok := p.backends[name]
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "No route for " + c.Request.URL.Path})
			return
		}
		backend.ServeHTTP(c.Writer, c.Request)
	}
}

// splitService returns the first path segment and the remainder (always starting with "/").
func splitService(path string) (string, string) {
	trimmed := strings.TrimPrefix(path, "/")
	name, rest, _ := strings.Cut(trimmed, "/")
	return name, "/" + rest
}

func singleJoin(base, rest string) string {
	if base == "" || base == "/" {
		return rest
	}
	return strings.TrimSuffix(base, "/") + rest
}
