package middleware

import (
	"fmt"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseTrustedProxies turns IPs and CIDRs into networks. A bare IP becomes a single-host network.
func ParseTrustedProxies(list []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			ip := net.ParseIP(s)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", s)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", s, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// RealIP sets the client IP into Gin context (key: "real_ip").
// Forwarding headers are only read when the socket peer is one of trusted:
// 1) CF-Connecting-IP (Cloudflare)
// 2) X-Forwarded-For, right-most hop that is not itself a trusted proxy
// Otherwise the socket address is the client.
func RealIP(trusted []*net.IPNet) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", realIP(c, trusted))
		c.Next()
	}
}

func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func realIP(c *gin.Context, trusted []*net.IPNet) string {
	remote := c.RemoteIP()
	if !isTrusted(net.ParseIP(remote), trusted) {
		return remote
	}
	if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
		if ip := net.ParseIP(cf); ip != nil {
			return ip.String()
		}
	}
	hops := strings.Split(c.GetHeader("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(hops[i]))
		if ip == nil {
			break
		}
		if !isTrusted(ip, trusted) || i == 0 {
			return ip.String()
		}
	}
	return remote
}
