package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/film-catalog/internal/logging"
    "github.com/iliyamo/film-catalog/internal/view"
)

// statusMessages replaces echo's English messages on the error page.
var statusMessages = map[int]string{
    http.StatusBadRequest:          "Некорректный запрос.",
    http.StatusForbidden:           "Доступ запрещён.",
    http.StatusNotFound:            "Страница не найдена.",
    http.StatusMethodNotAllowed:    "Метод не поддерживается.",
    http.StatusInternalServerError: "Внутренняя ошибка сервера.",
}

// ErrorHandler renders every error returned by a handler or middleware as
// the HTML error page.  Server errors are logged with the request id.
func ErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }

    code := http.StatusInternalServerError
    var he *echo.HTTPError
    if errors.As(err, &he) {
        code = he.Code
    }
    msg, ok := statusMessages[code]
    if !ok {
        msg = http.StatusText(code)
        if he != nil {
            if s, isString := he.Message.(string); isString {
                msg = s
            }
        }
    }

    if code >= http.StatusInternalServerError {
        logging.Error().Err(err).
            Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
            Str("method", c.Request().Method).
            Str("uri", c.Request().RequestURI).
            Msg("request failed")
    }

    if c.Request().Method == http.MethodHead {
        _ = c.NoContent(code)
        return
    }
    if rerr := c.Render(code, "error", view.M{"status": code, "message": msg}); rerr != nil {
        logging.Error().Err(rerr).Msg("render error page")
        _ = c.String(code, msg)
    }
}
