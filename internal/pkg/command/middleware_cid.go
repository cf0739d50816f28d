package command

import (
	"strings"

	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/uid"
)

// FlagCorrelationID is the persistent flag read by the correlation middleware.
const FlagCorrelationID = "correlation-id"

func normalizeCID(v string) string {
	if strings.ContainsAny(v, "\r\n") {
		return ""
	}
	v = strings.TrimSpace(v)
	const maxLen = 128
	if len(v) > maxLen {
		v = v[:maxLen]
	}
	return v
}

func middlewareCorrelationID(uid uid.StringID) Middleware {
	return func(next Handler) Handler {
		return func(r *Request) (any, error) {
			cid := normalizeCID(r.GetString(FlagCorrelationID))
			if cid == "" && uid != nil {
				cid = uid.Generate()
			}
			if cid != "" {
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}
			return next(r)
		}
	}
}
