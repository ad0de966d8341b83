package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"real ip header", map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
		{"private real ip ignored", map[string]string{"X-Real-IP": "10.0.0.5", "X-Forwarded-For": "198.51.100.2"}, "198.51.100.2"},
		{"first public forwarded hop", map[string]string{"X-Forwarded-For": "10.1.1.1, 198.51.100.9, 203.0.113.1"}, "198.51.100.9"},
		{"all private hops", map[string]string{"X-Forwarded-For": "192.168.1.4, 10.0.0.1"}, "192.168.1.4"},
		{"remote addr fallback", nil, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, GetRealIP(c))
		})
	}
}
