// internal/service/promotion/interfaces/client_ip.go
package interfaces

import (
	"net"
	"net/http"
	"strings"
)

// 反向代理常见的透传头，按可信度排序。
var proxyHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"Proxy-Client-IP",
	"WL-Proxy-Client-IP",
}

// clientIP 提取客户端 IP。X-Forwarded-For 里有多个 IP 时取第一个。
func clientIP(r *http.Request) string {
	for _, header := range proxyHeaders {
		ip := r.Header.Get(header)
		if ip == "" || strings.EqualFold(ip, "unknown") {
			continue
		}
		if idx := strings.Index(ip, ","); idx >= 0 {
			ip = ip[:idx]
		}
		return strings.TrimSpace(ip)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
