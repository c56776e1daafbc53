package common

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/sampletrack/pkg/common/code"
)

type Error struct {
	Msg  string `json:"msg"`
	Info any    `json:"info,omitempty"`
}

type Resp struct {
	Code  code.ErrCode `json:"code"`
	Data  any          `json:"data,omitempty"`
	Error *Error       `json:"error,omitempty"`
}

func ReplyOk(ctx *gin.Context, data ...any) {
	resp := &Resp{Code: code.Success}
	if len(data) > 0 {
		resp.Data = data[0]
	}
	ctx.JSON(http.StatusOK, resp)
}

// ReplyErr writes err with the HTTP status mapped from its code. Extra msgs
// replace the message carried by err.
func ReplyErr(ctx *gin.Context, err error, msgs ...string) {
	c, msg, info := code.Parse(err)
	if len(msgs) > 0 {
		msg = strings.Join(msgs, "; ")
	}
	ctx.JSON(c.HTTPStatus(), &Resp{
		Code: c,
		Error: &Error{
			Msg:  msg,
			Info: info,
		},
	})
}

// ReplyWith answers with an explicit code and payload, for results that are
// not errors but must not look like plain success either.
func ReplyWith(ctx *gin.Context, c code.ErrCode, data any) {
	ctx.JSON(c.HTTPStatus(), &Resp{
		Code: c,
		Data: data,
		Error: &Error{
			Msg: c.String(),
		},
	})
}

func Reply(ctx *gin.Context, err error, data ...any) {
	if err != nil {
		ReplyErr(ctx, err)
		return
	}
	ReplyOk(ctx, data...)
}
