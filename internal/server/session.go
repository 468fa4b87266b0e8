package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/convoplay/convoplay/internal/service"
)

// SessionCookie names the browser session cookie carrying the uuid.
const SessionCookie = "convoplay_session"

type ctxKey string

const conversationKey ctxKey = "conversation"

// GetConversation returns the conversation resolved by SessionLoader,
// or nil outside of it.
func GetConversation(ctx context.Context) *service.Conversation {
	conv, _ := ctx.Value(conversationKey).(*service.Conversation)
	return conv
}

// SessionLoader resolves the browser session cookie to a conversation,
// creating one (and setting the cookie) on first contact or after the
// session was evicted.
func SessionLoader(store *service.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conv := resolve(store, r)
			if conv == nil {
				conv = store.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    conv.ID().String(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), conversationKey, conv)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolve(store *service.SessionStore, r *http.Request) *service.Conversation {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return nil
	}
	conv, err := store.Get(id)
	if err != nil {
		return nil
	}
	return conv
}
