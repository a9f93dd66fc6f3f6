package api

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// jsonSerializer swaps echo's encoding/json for goccy/go-json
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}

	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i any) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON").SetInternal(err)
	}

	return nil
}
