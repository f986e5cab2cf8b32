package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jusfiscal/models"
	"jusfiscal/providers/instagram"
	"jusfiscal/providers/linkedin"
)

func newPublicationService(t *testing.T) (*PublicationService, *gorm.DB) {
	db := testDB(t)
	s := NewPublicationService(testConfig(), db, testLogger())
	return s, db
}

func seedContent(t *testing.T, db *gorm.DB) models.GeneratedContent {
	t.Helper()
	content := models.GeneratedContent{
		Title:       "Recupere créditos de PIS/COFINS",
		Content:     "Empresas industriais podem recuperar valores pagos indevidamente.",
		ContentType: "post",
		Keywords:    datatypes.NewJSONSlice([]string{"PIS", "COFINS"}),
		Status:      models.ContentStatusDraft,
	}
	require.NoError(t, db.Create(&content).Error)
	return content
}

func wordpressChannel(t *testing.T, db *gorm.DB, siteURL string, active bool) models.PublicationChannel {
	t.Helper()
	apiConfig, _ := json.Marshal(models.WordPressConfig{SiteURL: siteURL, Username: "editor", Password: "app-pass"})
	channel := models.PublicationChannel{
		Name:        "Blog JusFiscal",
		ChannelType: models.ChannelTypeWordPress,
		APIConfig:   datatypes.JSON(apiConfig),
		IsActive:    active,
	}
	require.NoError(t, db.Create(&channel).Error)
	return channel
}

func wordpressStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 42, "link": "https://blog.jusfiscal.com.br/?p=42"})
	}))
}

func TestPublishContentNotFound(t *testing.T) {
	s, db := newPublicationService(t)
	channel := wordpressChannel(t, db, "https://example.com", true)

	result, err := s.Publish(999, channel.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "content not found")
}

func TestPublishChannelNotFound(t *testing.T) {
	s, db := newPublicationService(t)
	content := seedContent(t, db)

	result, err := s.Publish(content.ID, 999)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "channel not found")
}

func TestChannelCreatedInactiveStaysInactive(t *testing.T) {
	_, db := newPublicationService(t)
	channel := wordpressChannel(t, db, "https://example.com", false)

	var stored models.PublicationChannel
	require.NoError(t, db.First(&stored, channel.ID).Error)
	assert.False(t, stored.IsActive)
}

func TestPublishInactiveChannelLeavesNoLog(t *testing.T) {
	s, db := newPublicationService(t)
	content := seedContent(t, db)
	channel := wordpressChannel(t, db, "https://example.com", false)

	result, err := s.Publish(content.ID, channel.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not active")

	// The refusal happens before any attempt, so no log row is written.
	var count int64
	db.Model(&models.PublicationLog{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPublishWordPressSuccess(t *testing.T) {
	srv := wordpressStub(t)
	defer srv.Close()

	s, db := newPublicationService(t)
	content := seedContent(t, db)
	channel := wordpressChannel(t, db, srv.URL, true)

	result, err := s.Publish(content.ID, channel.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "https://blog.jusfiscal.com.br/?p=42", result.PublicationURL)

	var log models.PublicationLog
	require.NoError(t, db.Where("content_id = ?", content.ID).First(&log).Error)
	assert.Equal(t, models.PublicationStatusSuccess, log.PublicationStatus)
	assert.Equal(t, result.PublicationURL, log.PublicationURL)

	var stored models.GeneratedContent
	require.NoError(t, db.First(&stored, content.ID).Error)
	assert.Equal(t, models.ContentStatusPublished, stored.Status)
	assert.NotNil(t, stored.PublishedAt)
}

func TestPublishFailureLogsAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, db := newPublicationService(t)
	content := seedContent(t, db)
	channel := wordpressChannel(t, db, srv.URL, true)

	result, err := s.Publish(content.ID, channel.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)

	var log models.PublicationLog
	require.NoError(t, db.Where("content_id = ?", content.ID).First(&log).Error)
	assert.Equal(t, models.PublicationStatusFailed, log.PublicationStatus)
	assert.NotEmpty(t, log.ErrorMessage)

	// Content stays a draft on failure.
	var stored models.GeneratedContent
	require.NoError(t, db.First(&stored, content.ID).Error)
	assert.Equal(t, models.ContentStatusDraft, stored.Status)
}

func TestPublishUnsupportedChannelType(t *testing.T) {
	s, db := newPublicationService(t)
	content := seedContent(t, db)
	channel := models.PublicationChannel{Name: "TikTok", ChannelType: "tiktok", IsActive: true}
	require.NoError(t, db.Create(&channel).Error)

	result, err := s.Publish(content.ID, channel.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported channel type")

	var count int64
	db.Model(&models.PublicationLog{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPublishEmailChannelSimulated(t *testing.T) {
	s, db := newPublicationService(t)
	content := seedContent(t, db)
	channel := models.PublicationChannel{Name: "Newsletter", ChannelType: models.ChannelTypeEmail, IsActive: true}
	require.NoError(t, db.Create(&channel).Error)

	result, err := s.Publish(content.ID, channel.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.True(t, result.Simulated)
}

func TestPublishLinkedInTruncatesAndTags(t *testing.T) {
	var gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			SpecificContent struct {
				ShareContent struct {
					ShareCommentary struct {
						Text string `json:"text"`
					} `json:"shareCommentary"`
				} `json:"com.linkedin.ugc.ShareContent"`
			} `json:"specificContent"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		gotText = payload.SpecificContent.ShareContent.ShareCommentary.Text
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:123"})
	}))
	defer srv.Close()

	s, db := newPublicationService(t)
	s.LinkedIn = linkedin.NewClient(testLogger())
	s.LinkedIn.BaseURL = srv.URL

	content := models.GeneratedContent{
		Title:       "Título",
		Content:     strings.Repeat("x", 2000),
		ContentType: "post",
		Keywords:    datatypes.NewJSONSlice([]string{"PIS", "COFINS"}),
		Status:      models.ContentStatusDraft,
	}
	require.NoError(t, db.Create(&content).Error)

	apiConfig, _ := json.Marshal(models.LinkedInConfig{AccessToken: "tok", PersonID: "abc"})
	channel := models.PublicationChannel{
		Name: "LinkedIn JusFiscal", ChannelType: models.ChannelTypeLinkedIn,
		APIConfig: datatypes.JSON(apiConfig), IsActive: true,
	}
	require.NoError(t, db.Create(&channel).Error)

	result, err := s.Publish(content.ID, channel.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "urn:li:share:123", result.PostID)
	assert.Contains(t, gotText, "#PIS")
	assert.Contains(t, gotText, "#COFINS")
}

func TestPublishInstagramUsesGeneralHashtags(t *testing.T) {
	var gotCaption string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if caption := r.PostForm.Get("caption"); caption != "" {
			gotCaption = caption
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "17900000042"})
	}))
	defer srv.Close()

	s, db := newPublicationService(t)
	s.Instagram = instagram.NewClient(testLogger())
	s.Instagram.BaseURL = srv.URL

	content := models.GeneratedContent{
		Title:        "Recupere ICMS",
		Content:      "Corpo do post.",
		ContentType:  "instagram_post",
		TargetSector: "Comércio",
		ImageURL:     "https://cdn.example.com/img.png",
		Keywords:     datatypes.NewJSONSlice([]string{"ICMS"}),
		Status:       models.ContentStatusDraft,
	}
	require.NoError(t, db.Create(&content).Error)

	apiConfig, _ := json.Marshal(models.InstagramConfig{AccessToken: "tok", PageID: "page1"})
	channel := models.PublicationChannel{
		Name: "Instagram JusFiscal", ChannelType: models.ChannelTypeInstagram,
		APIConfig: datatypes.JSON(apiConfig), IsActive: true,
	}
	require.NoError(t, db.Create(&channel).Error)

	result, err := s.Publish(content.ID, channel.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "17900000042", result.PostID)
	assert.Contains(t, gotCaption, "#recuperacaotributaria")
	assert.Contains(t, gotCaption, "#dicastributarias")
	assert.Contains(t, gotCaption, "#icms")
}

func TestFormatLinkedInPostTruncation(t *testing.T) {
	long := strings.Repeat("a", 1500)
	text := formatLinkedInPost("T", long, nil)
	assert.LessOrEqual(t, len([]rune(text)), maxLinkedInChars)
	assert.True(t, strings.HasSuffix(text, "..."))

	short := formatLinkedInPost("Título", "Corpo", nil)
	assert.Equal(t, "Título\n\nCorpo", short)
}

func TestFormatLinkedInPostHashtagCap(t *testing.T) {
	keywords := []string{"um", "dois", "três", "quatro", "cinco", "seis", "sete"}
	text := formatLinkedInPost("T", "C", keywords)
	assert.Equal(t, maxPostHashtags, strings.Count(text, "#"))
	assert.NotContains(t, text, "#seis")
}

func TestFormatInstagramCaptionTruncation(t *testing.T) {
	caption := formatInstagramCaption("T", strings.Repeat("b", 3000))
	assert.LessOrEqual(t, len([]rune(caption)), maxInstagramChars)
	assert.True(t, strings.HasSuffix(caption, "..."))
}

func TestSchedulePublication(t *testing.T) {
	s, db := newPublicationService(t)
	content := seedContent(t, db)
	channel := wordpressChannel(t, db, "https://example.com", true)

	at := time.Now().UTC().Add(2 * time.Hour)
	scheduled, err := s.SchedulePublication(content.ID, channel.ID, at)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusScheduled, scheduled.Status)
	assert.WithinDuration(t, at, scheduled.ScheduledTime, time.Second)
}

func TestSchedulePublicationUnknownContent(t *testing.T) {
	s, db := newPublicationService(t)
	channel := wordpressChannel(t, db, "https://example.com", true)

	_, err := s.SchedulePublication(999, channel.ID, time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProcessScheduledPublicationsSweep(t *testing.T) {
	srv := wordpressStub(t)
	defer srv.Close()

	s, db := newPublicationService(t)
	okContent := seedContent(t, db)
	okChannel := wordpressChannel(t, db, srv.URL, true)

	brokenContent := seedContent(t, db)
	brokenChannel := wordpressChannel(t, db, "http://127.0.0.1:1", true)

	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)
	rows := []models.ScheduledPublication{
		{ContentID: okContent.ID, ChannelID: okChannel.ID, ScheduledTime: past, Status: models.ScheduleStatusScheduled},
		{ContentID: brokenContent.ID, ChannelID: brokenChannel.ID, ScheduledTime: past, Status: models.ScheduleStatusScheduled},
		{ContentID: okContent.ID, ChannelID: okChannel.ID, ScheduledTime: future, Status: models.ScheduleStatusScheduled},
	}
	require.NoError(t, db.Create(&rows).Error)

	result, err := s.ProcessScheduledPublications()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Published)
	assert.Equal(t, 1, result.Failed)

	var published models.ScheduledPublication
	require.NoError(t, db.First(&published, rows[0].ID).Error)
	assert.Equal(t, models.ScheduleStatusPublished, published.Status)
	assert.NotEmpty(t, published.PublicationURL)
	assert.NotNil(t, published.PublishedAt)

	var failed models.ScheduledPublication
	require.NoError(t, db.First(&failed, rows[1].ID).Error)
	assert.Equal(t, models.ScheduleStatusFailed, failed.Status)
	assert.NotEmpty(t, failed.ErrorMessage)

	// The future row is untouched.
	var pending models.ScheduledPublication
	require.NoError(t, db.First(&pending, rows[2].ID).Error)
	assert.Equal(t, models.ScheduleStatusScheduled, pending.Status)
}

func TestPublicationStatistics(t *testing.T) {
	s, db := newPublicationService(t)
	channel := wordpressChannel(t, db, "https://example.com", true)

	logs := []models.PublicationLog{
		{ContentID: 1, ChannelID: channel.ID, PublicationStatus: models.PublicationStatusSuccess},
		{ContentID: 2, ChannelID: channel.ID, PublicationStatus: models.PublicationStatusSuccess},
		{ContentID: 3, ChannelID: channel.ID, PublicationStatus: models.PublicationStatusFailed},
	}
	require.NoError(t, db.Create(&logs).Error)

	stats, err := s.Statistics(30)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Succeeded)
	assert.Equal(t, int64(1), stats.Failed)
	assert.InDelta(t, 66.6, stats.SuccessRate, 0.1)
	assert.Equal(t, int64(3), stats.ByChannel[models.ChannelTypeWordPress])
}
