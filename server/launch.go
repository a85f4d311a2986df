package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/bg/errors"
	"github.com/kbukum/bg/process"
	"github.com/kbukum/bg/validation"
)

// Launcher runs launch requests. *process.Adapter satisfies it.
type Launcher interface {
	Launch(ctx context.Context, req process.Request) (*process.Result, error)
}

// LaunchBody is the JSON body of POST /v1/launch. An empty command is passed
// through so the launcher reports NO_COMMAND, as the CLI does.
type LaunchBody struct {
	Command   string   `json:"command" validate:"max=4096"`
	Arguments []string `json:"arguments" validate:"max=1024"`
	Debug     bool     `json:"debug"`
	Pid       bool     `json:"pid"`
	Wait      bool     `json:"wait"`
	Dir       string   `json:"dir,omitempty" validate:"omitempty,dir"`
	Env       []string `json:"env,omitempty" validate:"max=256,dive,envvar"`
}

// Request converts the body into a launch request.
func (b *LaunchBody) Request() process.Request {
	return process.Request{
		Binary: b.Command,
		Args:   b.Arguments,
		Debug:  b.Debug,
		Mode:   process.ModeFromFlags(b.Pid, b.Wait),
		Pid:    b.Pid,
		Dir:    b.Dir,
		Env:    b.Env,
	}
}

// LaunchHandler returns the handler for POST /v1/launch. It responds with
// {"data": Result} or the AppError body and its HTTP status.
func LaunchHandler(l Launcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body LaunchBody
		if err := c.ShouldBindJSON(&body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				RespondWithError(c, apperrors.InvalidInput("body", "request body too large"))
				return
			}
			RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
			return
		}
		if err := validation.Validate(body); err != nil {
			RespondWithError(c, err)
			return
		}

		result, err := l.Launch(c.Request.Context(), body.Request())
		if err != nil {
			RespondWithError(c, err)
			return
		}
		RespondOK(c, result)
	}
}
