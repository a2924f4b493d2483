package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// IPAllowlist returns a middleware that only allows requests from the
// given CIDR networks (bare IPs are accepted and treated as /32 or
// /128). An empty list allows everyone. Entries that fail to parse are
// ignored.
func IPAllowlist(cidrs []string) gin.HandlerFunc {
	var nets []*net.IPNet
	for _, raw := range cidrs {
		if _, n, err := net.ParseCIDR(raw); err == nil {
			nets = append(nets, n)
			continue
		}
		if ip := net.ParseIP(raw); ip != nil {
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
		}
	}
	return func(c *gin.Context) {
		if len(nets) == 0 {
			c.Next()
			return
		}
		ip := net.ParseIP(c.ClientIP())
		if ip != nil {
			for _, n := range nets {
				if n.Contains(ip) {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}
