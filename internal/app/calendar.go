package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Doctors can link a Google Calendar to see their external events next
// to their bookings. The integration is active only when the GOOGLE_*
// env vars are set.

type calendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status"`
}

func (a *App) oauthConfig() *oauth2.Config {
	if !a.Cfg.GoogleEnabled() {
		return nil
	}
	return &oauth2.Config{
		ClientID:     a.Cfg.GoogleClientID,
		ClientSecret: a.Cfg.GoogleClientSecret,
		RedirectURL:  a.Cfg.GoogleRedirectURL,
		Scopes:       []string{calendar.CalendarReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// GET /api/calendar/auth
func (a *App) GoogleAuthHandler(c *gin.Context) {
	conf := a.oauthConfig()
	if conf == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google Calendar is not configured"})
		return
	}

	state := fmt.Sprintf("user_%s_%d", callerID(c), time.Now().Unix())
	c.JSON(http.StatusOK, gin.H{
		"auth_url": conf.AuthCodeURL(state, oauth2.AccessTypeOffline),
		"state":    state,
	})
}

// GET /oauth2callback
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	conf := a.oauthConfig()
	if conf == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google Calendar is not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "authorization code required"})
		return
	}

	token, err := conf.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to exchange code for token"})
		return
	}

	tokenJSON, _ := json.Marshal(token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Authorization successful",
		"state":   c.Query("state"),
		"token":   string(tokenJSON),
	})
}

// googleClient builds a calendar service from the caller-supplied
// token header.
func (a *App) googleClient(c *gin.Context) (*calendar.Service, bool) {
	conf := a.oauthConfig()
	if conf == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google Calendar is not configured"})
		return nil, false
	}

	tokenStr := c.GetHeader("X-Google-Token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Google token required in X-Google-Token header"})
		return nil, false
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(tokenStr), &token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid token format"})
		return nil, false
	}

	ctx := c.Request.Context()
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, &token)))
	if err != nil {
		a.Log.Error().Err(err).Msg("calendar service init")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create calendar service"})
		return nil, false
	}
	return srv, true
}

// GET /api/calendar/events
func (a *App) GoogleCalendarEventsHandler(c *gin.Context) {
	srv, ok := a.googleClient(c)
	if !ok {
		return
	}

	call := srv.Events.List(c.DefaultQuery("calendar_id", "primary")).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250)
	if min := c.Query("time_min"); min != "" {
		call = call.TimeMin(min)
	}
	if max := c.Query("time_max"); max != "" {
		call = call.TimeMax(max)
	}

	events, err := call.Do()
	if err != nil {
		a.Log.Error().Err(err).Msg("calendar events list")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to retrieve events"})
		return
	}

	out := []calendarEvent{}
	for _, item := range events.Items {
		ev := calendarEvent{
			ID:          item.Id,
			Summary:     item.Summary,
			Description: item.Description,
			Location:    item.Location,
			Status:      item.Status,
		}
		ev.StartTime = parseEventTime(item.Start)
		ev.EndTime = parseEventTime(item.End)
		out = append(out, ev)
	}

	c.JSON(http.StatusOK, gin.H{"events": out, "count": len(out)})
}

func parseEventTime(t *calendar.EventDateTime) time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed
		}
	}
	if t.Date != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// GET /api/calendar/calendars
func (a *App) GoogleCalendarListHandler(c *gin.Context) {
	srv, ok := a.googleClient(c)
	if !ok {
		return
	}

	list, err := srv.CalendarList.List().Do()
	if err != nil {
		a.Log.Error().Err(err).Msg("calendar list")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to retrieve calendars"})
		return
	}

	type calendarInfo struct {
		ID         string `json:"id"`
		Summary    string `json:"summary"`
		Primary    bool   `json:"primary"`
		AccessRole string `json:"access_role"`
	}
	out := []calendarInfo{}
	for _, item := range list.Items {
		out = append(out, calendarInfo{
			ID:         item.Id,
			Summary:    item.Summary,
			Primary:    item.Primary,
			AccessRole: item.AccessRole,
		})
	}

	c.JSON(http.StatusOK, gin.H{"calendars": out, "count": len(out)})
}
