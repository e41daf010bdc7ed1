package httpserver

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

func getUserID(c echo.Context) (uint, error) {
	v := c.Get("user_id")
	s, ok := v.(string)
	if !ok || s == "" {
		return 0, errors.New("unauthorized")
	}

	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.New("unauthorized")
	}
	return uint(id), nil
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
