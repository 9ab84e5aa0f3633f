package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/touchline/touchline-chat/internal/api/apierr"
	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/services/directory"
)

type contextKey string

const participantContextKey contextKey = "participant"

// IdentityHeader names the header carrying the caller's participant id for
// the listing endpoints. This is a development shortcut confined to the HTTP
// boundary: the chat core takes sender identity as an explicit parameter,
// and production deployments are expected to replace this header with a
// verified credential exchange.
const IdentityHeader = "X-Participant-ID"

// Identity resolves the calling participant from the identity header and
// rejects requests without a resolvable identity
func Identity(directoryService *directory.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(IdentityHeader)
			if raw == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				apierr.WriteError(w, apierr.NewInvalidRequestError("invalid participant id"))
				return
			}

			participant, err := directoryService.Resolve(r.Context(), model.ParticipantID(id))
			if err != nil {
				if errors.Is(err, model.ErrParticipantNotFound) {
					apierr.WriteError(w, apierr.NewUnauthorizedError())
				} else {
					apierr.WriteError(w, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), participantContextKey, participant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetParticipant returns the authenticated participant from the request context
func GetParticipant(ctx context.Context) *model.Participant {
	p, _ := ctx.Value(participantContextKey).(*model.Participant)
	return p
}

// MustGetParticipant returns the authenticated participant or panics
func MustGetParticipant(ctx context.Context) *model.Participant {
	p := GetParticipant(ctx)
	if p == nil {
		panic("no participant in context - identity middleware not applied?")
	}
	return p
}
