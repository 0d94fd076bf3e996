package tdjsontest

import (
	"fmt"
	"strconv"

	"github.com/danhigham/autotele/internal/tdjson"
)

// Ok answers req with an "ok" object.
func Ok(req tdjson.Object) string {
	return Reply(req, `"@type":"ok"`)
}

// Error answers req with an "error" object.
func Error(req tdjson.Object, code int, message string) string {
	return Reply(req, fmt.Sprintf(`"@type":"error","code":%d,"message":%s`, code, strconv.Quote(message)))
}

// Reply wraps body (object fields without braces) into an object that
// carries req's correlation token.
func Reply(req tdjson.Object, body string) string {
	if !req.HasExtra {
		return "{" + body + "}"
	}
	return fmt.Sprintf(`{%s,"@extra":%d}`, body, req.Extra)
}

// AuthState builds an updateAuthorizationState event for the given
// authorizationState* type name.
func AuthState(stateType string) string {
	return fmt.Sprintf(`{"@type":"updateAuthorizationState","authorization_state":{"@type":%s}}`,
		strconv.Quote(stateType))
}
