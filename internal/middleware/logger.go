package middleware

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/film-catalog/internal/logging"
)

// RequestLogger logs one structured line per request through zerolog.
// It expects echo's RequestID middleware to run first.
func RequestLogger() echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            ev := logging.Info()
            if v.Error != nil || v.Status >= 500 {
                ev = logging.Error().Err(v.Error)
            }
            ev.Str("request_id", v.RequestID).
                Str("method", v.Method).
                Str("uri", v.URI).
                Int("status", v.Status).
                Dur("latency", v.Latency).
                Str("remote_ip", v.RemoteIP).
                Str("user", userID(c)).
                Msg("request")
            return nil
        },
    })
}
