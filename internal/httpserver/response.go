package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

// fail writes err as {"message": ...} with status 400. Errors without a client-facing
// message are logged and replaced by def.
func (h *handlers) fail(c *gin.Context, err error, def string) {
	h.failWith(c, err, def, nil)
}

func (h *handlers) failWith(c *gin.Context, err error, def string, extra gin.H) {
	var p *domain.Problem
	if !errors.As(err, &p) || errors.Is(err, domain.ErrPersistence) {
		h.logger.Printf("handler: %s failed err=%v", c.FullPath(), err)
	}
	body := gin.H{"message": domain.Message(err, def)}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusBadRequest, body)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return false
	}
	return true
}

// flexInt accepts a JSON number or a numeric string within int32. Blank strings and null decode to zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 32)
	if err != nil {
		return errors.New("expected an integer")
	}
	*f = flexInt(n)
	return nil
}

// pageParam reads the :page path segment, defaulting to the first page.
func pageParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Param("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
