package xano

import (
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"todoctl/pkg/credstore"
	"todoctl/pkg/logger"
)

// Client talks to the two API groups of the hosted backend: one scoped to
// auth, one to the todo resource. The bearer token is read from the
// credential store right before every request, so a pair refreshed
// mid-session is picked up on the next call. A 401 from either group erases
// the stored pair immediately and fires the unauthorized hook.
type Client struct {
	auth           *resty.Client
	todos          *resty.Client
	store          credstore.Store
	onUnauthorized func()
}

func NewClient(authBase, todosBase string, store credstore.Store) *Client {
	c := &Client{store: store}
	c.auth = c.newResty(authBase)
	c.todos = c.newResty(todosBase)
	return c
}

// OnUnauthorized sets the hook fired after a 401 cleared the stored pair.
// Wired to the session manager so the in-memory state drops too.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) newResty(base string) *resty.Client {
	rc := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json")

	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx := req.Context()
		if req.Token == `` && req.Header.Get("Authorization") == `` {
			token, ok, err := c.store.Get(ctx, credstore.KeyAuthToken)
			if err != nil {
				logger.Log(ctx).Errorf("xano: can't read stored token: %v", err)
			} else if ok {
				req.SetAuthToken(token)
			}
		}
		req.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})

	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.StatusCode() == http.StatusUnauthorized {
			c.rejectCredential(resp.Request)
		}
		return nil
	})

	return rc
}

// rejectCredential handles a 401 from any endpoint: the stored pair is
// known-bad, so it is erased before anything can retry with it.
func (c *Client) rejectCredential(req *resty.Request) {
	ctx := req.Context()
	logger.Log(ctx).Warnf("xano: credential rejected on %s %s", req.Method, req.URL)
	if err := c.store.RemoveMany(ctx, credstore.KeyAuthToken, credstore.KeyUser); err != nil {
		logger.Log(ctx).Errorf("xano: can't clear rejected credentials: %v", err)
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
