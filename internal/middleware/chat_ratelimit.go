package middleware

import (
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/mindmate/mindmate-backend/pkg/clientip"
)

// Chat rate limit: per-IP, different limits for logged-in vs anonymous users.
// Each reply may cost an upstream model call.
const (
	chatAuthRPS   = 0.5 // 30/min
	chatAuthBurst = 20
	chatAnonRPS   = 0.17 // ~10/min
	chatAnonBurst = 5
)

var chatLimiter = struct {
	auth, anon *ipLimiter
}{
	auth: newIPLimiter(rate.Limit(chatAuthRPS), chatAuthBurst),
	anon: newIPLimiter(rate.Limit(chatAnonRPS), chatAnonBurst),
}

var chatPaths = map[string]bool{
	"/api/chat":     true,
	"/api/chat.php": true,
}

// ChatRateLimit limits POSTs to the chat endpoint. Run it after Identity so
// logged-in users get the larger budget.
func ChatRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !chatPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		limiter, key, burst := chatBudget(r)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(burst))
		if !limiter.allow(key) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			tooManyRequests(w, ChatLimitMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ChatLimitMessage is returned once the caller's chat budget is spent.
const ChatLimitMessage = "Too many chat messages. Please slow down."

// AllowChat spends one chat token for the caller of r. The WebSocket
// handler calls it once per frame.
func AllowChat(r *http.Request) bool {
	limiter, key, _ := chatBudget(r)
	return limiter.allow(key)
}

// chatBudget picks the bucket: logged-in users are keyed by id, anonymous
// callers by IP.
func chatBudget(r *http.Request) (*ipLimiter, string, int) {
	if id, ok := UserID(r.Context()); ok {
		return chatLimiter.auth, "user:" + strconv.FormatInt(id, 10), chatAuthBurst
	}
	return chatLimiter.anon, clientip.RealClientIP(r), chatAnonBurst
}
