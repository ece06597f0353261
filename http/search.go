package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/debounce"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/kinkando/photo-feed-service/pkg/session"
	"github.com/kinkando/photo-feed-service/service"
	"github.com/labstack/echo/v4"
)

const (
	liveSearchWriteTimeout = 5 * time.Second
	closeSignedOut         = 4001
)

type SearchHandler struct {
	searchService service.Search
	observer      session.Observer
	debounce      time.Duration
	upgrader      websocket.Upgrader
}

type liveSearchRequest struct {
	Term string `json:"term"`
}

type liveSearchResponse struct {
	Seq     uint64              `json:"seq"`
	Term    string              `json:"term"`
	Success bool                `json:"success"`
	Users   []model.UserSummary `json:"users"`
	Error   string              `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
}

func NewSearchHandler(e *echo.Echo, debounce time.Duration, searchService service.Search, observer session.Observer) {
	handler := &SearchHandler{
		searchService: searchService,
		observer:      observer,
		debounce:      debounce,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	route := e.Group("/users/search")
	route.GET("", handler.search)
	route.GET("/live", handler.liveSearch)
}

func (h *SearchHandler) search(c echo.Context) error {
	users, err := h.searchService.SearchUsers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"users": users})
}

// liveSearch treats every inbound frame as a keystroke. Searches are
// debounced, a newer search cancels the one in flight, and only the result of
// the latest dispatched search is written back. The socket is closed when the
// caller signs out.
func (h *SearchHandler) liveSearch(c echo.Context) error {
	userProfile, err := profile.UseProfile(c.Request().Context())
	if err != nil {
		return failure(c, model.NewUnauthenticatedError(err.Error(), "Please sign in to search users"))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Context(c.Request().Context()).Warn(err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	var writeMu sync.Mutex
	runner := debounce.New(h.debounce, h.searchService.SearchUsers, func(result debounce.Result[string, []model.UserSummary]) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(liveSearchWriteTimeout))
		if err := conn.WriteJSON(toLiveSearchResponse(result)); err != nil {
			logger.Context(ctx).Warn(err)
		}
	})
	defer runner.Stop()

	subscription, err := h.observer.Subscribe(ctx, func(event session.Event) {
		if event.UserID != userProfile.UserID || event.State != session.SignedOut {
			return
		}
		message := websocket.FormatCloseMessage(closeSignedOut, "signed out")
		_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(liveSearchWriteTimeout))
		cancel()
		_ = conn.Close()
	})
	if err != nil {
		logger.Context(ctx).Error(err)
		return nil
	}
	defer subscription.Unsubscribe()

	for {
		var req liveSearchRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				logger.Context(ctx).Warn(err)
			}
			return nil
		}
		runner.Push(ctx, req.Term)
	}
}

func toLiveSearchResponse(result debounce.Result[string, []model.UserSummary]) liveSearchResponse {
	res := liveSearchResponse{Seq: result.Seq, Term: result.Query}
	if result.Err != nil {
		if errors.Is(result.Err, context.Canceled) {
			res.Error, res.Message = string(model.OperationError), "Search was cancelled"
			return res
		}
		e := model.AsError(result.Err)
		res.Error, res.Message = errorCode(e), e.Message
		return res
	}
	res.Success = true
	res.Users = result.Value
	if res.Users == nil {
		res.Users = []model.UserSummary{}
	}
	return res
}
