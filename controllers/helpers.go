package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// bindID parses a positive numeric path parameter.
func bindID(ctx *gin.Context, name string, out *uint) error {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		return err
	}
	*out = uint(v)
	return nil
}
