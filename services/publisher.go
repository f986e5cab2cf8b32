package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jusfiscal/config"
	"jusfiscal/models"
	"jusfiscal/providers/instagram"
	"jusfiscal/providers/linkedin"
	"jusfiscal/providers/wordpress"
)

// maxLinkedInChars and maxInstagramChars are the platform caption
// limits; longer content is cut and terminated with an ellipsis.
const (
	maxLinkedInChars  = 1300
	maxInstagramChars = 2200
	maxPostHashtags   = 5
)

// PublicationService pushes generated content out to the configured
// publication channels and keeps the publication audit log.
type PublicationService struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *zap.Logger
	LinkedIn  *linkedin.Client
	Instagram *instagram.Client
	WordPress *wordpress.Client
}

// NewPublicationService creates a publication service.
func NewPublicationService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *PublicationService {
	return &PublicationService{
		Config:    cfg,
		DB:        db,
		Logger:    logger,
		LinkedIn:  linkedin.NewClient(logger),
		Instagram: instagram.NewClient(logger),
		WordPress: wordpress.NewClient(logger),
	}
}

// PublishResult reports a single publication attempt.
type PublishResult struct {
	Success        bool   `json:"success"`
	PublicationURL string `json:"publication_url,omitempty"`
	PostID         string `json:"post_id,omitempty"`
	Simulated      bool   `json:"simulated,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Publish pushes one piece of content to one channel. Every real
// attempt leaves a PublicationLog row; the inactive-channel refusal
// happens before any attempt and logs nothing.
func (s *PublicationService) Publish(contentID, channelID uint) (*PublishResult, error) {
	var content models.GeneratedContent
	if err := s.DB.First(&content, contentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &PublishResult{Success: false, Error: "content not found"}, nil
		}
		return nil, err
	}

	var channel models.PublicationChannel
	if err := s.DB.First(&channel, channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &PublishResult{Success: false, Error: "channel not found"}, nil
		}
		return nil, err
	}
	if !channel.IsActive {
		return &PublishResult{Success: false, Error: fmt.Sprintf("channel %s is not active", channel.Name)}, nil
	}

	result := s.dispatch(&content, &channel)

	if err := s.logAttempt(contentID, channelID, result); err != nil {
		return nil, err
	}

	if result.Success {
		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":       models.ContentStatusPublished,
			"published_at": now,
		}
		if err := s.DB.Model(&content).Updates(updates).Error; err != nil {
			return nil, err
		}
		s.Logger.Info("Content published",
			zap.Uint("content_id", contentID),
			zap.Uint("channel_id", channelID),
			zap.String("channel_type", channel.ChannelType),
			zap.String("url", result.PublicationURL))
	} else {
		s.Logger.Warn("Publication failed",
			zap.Uint("content_id", contentID),
			zap.Uint("channel_id", channelID),
			zap.String("error", result.Error))
	}

	return result, nil
}

// dispatch routes the content to the channel's platform. A provider
// panic is converted into a failed result so the attempt still gets
// logged.
func (s *PublicationService) dispatch(content *models.GeneratedContent, channel *models.PublicationChannel) (result *PublishResult) {
	defer func() {
		if r := recover(); r != nil {
			result = &PublishResult{Success: false, Error: fmt.Sprintf("publication panicked: %v", r)}
		}
	}()

	switch channel.ChannelType {
	case models.ChannelTypeLinkedIn:
		return s.publishLinkedIn(content, channel)
	case models.ChannelTypeInstagram:
		return s.publishInstagram(content, channel)
	case models.ChannelTypeWordPress:
		return s.publishWordPress(content, channel)
	case models.ChannelTypeEmail:
		return s.publishEmail(content, channel)
	default:
		return &PublishResult{Success: false, Error: fmt.Sprintf("unsupported channel type: %s", channel.ChannelType)}
	}
}

func (s *PublicationService) publishLinkedIn(content *models.GeneratedContent, channel *models.PublicationChannel) *PublishResult {
	cfg, err := channel.LinkedInConfig()
	if err != nil {
		return &PublishResult{Success: false, Error: err.Error()}
	}

	text := formatLinkedInPost(content.Title, content.Content, content.Keywords)
	post, err := s.LinkedIn.PublishPost(cfg, text)
	if err != nil {
		return &PublishResult{Success: false, Error: err.Error()}
	}
	return &PublishResult{Success: true, PublicationURL: post.URL, PostID: post.PostID}
}

func (s *PublicationService) publishInstagram(content *models.GeneratedContent, channel *models.PublicationChannel) *PublishResult {
	cfg, err := channel.InstagramConfig()
	if err != nil {
		return &PublishResult{Success: false, Error: err.Error()}
	}

	caption := formatInstagramCaption(content.Title, content.Content)
	// Content carries no topic category, so the general tax set plus
	// the content keywords is used.
	hashtags := instagram.TaxHashtags("", content.Keywords)

	imageURL := content.ImageURL
	if imageURL == "" {
		imageURL = cfg.DefaultImageURL
	}

	post, err := s.Instagram.PublishPost(cfg, caption, imageURL, hashtags)
	if err != nil {
		return &PublishResult{Success: false, Error: err.Error()}
	}
	return &PublishResult{Success: true, PublicationURL: post.URL, PostID: post.MediaID}
}

func (s *PublicationService) publishWordPress(content *models.GeneratedContent, channel *models.PublicationChannel) *PublishResult {
	cfg, err := channel.WordPressConfig()
	if err != nil {
		return &PublishResult{Success: false, Error: err.Error()}
	}

	post, err := s.WordPress.PublishPost(cfg, content.Title, content.Content, content.Keywords)
	if err != nil {
		return &PublishResult{Success: false, Error: err.Error()}
	}
	return &PublishResult{Success: true, PublicationURL: post.URL, PostID: strconv.Itoa(post.PostID)}
}

// publishEmail simulates a newsletter send; real delivery goes through
// a campaign tool, not the transactional SMTP account.
func (s *PublicationService) publishEmail(content *models.GeneratedContent, channel *models.PublicationChannel) *PublishResult {
	s.Logger.Info("Email publication simulated",
		zap.Uint("content_id", content.ID),
		zap.String("channel", channel.Name))
	return &PublishResult{
		Success:   true,
		PostID:    fmt.Sprintf("newsletter_sim_%d", content.ID),
		Simulated: true,
	}
}

// formatLinkedInPost joins title and body, truncates to the platform
// limit and appends up to five keyword hashtags.
func formatLinkedInPost(title, body string, keywords []string) string {
	text := title + "\n\n" + body
	if len([]rune(text)) > maxLinkedInChars {
		runes := []rune(text)
		text = string(runes[:maxLinkedInChars-3]) + "..."
	}

	var tags []string
	for _, kw := range keywords {
		if len(tags) >= maxPostHashtags {
			break
		}
		tag := strings.ReplaceAll(strings.TrimSpace(kw), " ", "")
		if tag == "" {
			continue
		}
		tags = append(tags, "#"+tag)
	}
	if len(tags) > 0 {
		text += "\n\n" + strings.Join(tags, " ")
	}
	return text
}

// formatInstagramCaption joins title and body and truncates to the
// platform limit. Hashtags are appended by the provider.
func formatInstagramCaption(title, body string) string {
	caption := title + "\n\n" + body
	if len([]rune(caption)) > maxInstagramChars {
		runes := []rune(caption)
		caption = string(runes[:maxInstagramChars-3]) + "..."
	}
	return caption
}

// logAttempt appends one PublicationLog row for a publication attempt.
func (s *PublicationService) logAttempt(contentID, channelID uint, result *PublishResult) error {
	status := models.PublicationStatusSuccess
	if !result.Success {
		status = models.PublicationStatusFailed
	}

	log := models.PublicationLog{
		ContentID:         contentID,
		ChannelID:         channelID,
		PublicationStatus: status,
		PublicationURL:    result.PublicationURL,
		ErrorMessage:      result.Error,
	}
	if result.PostID != "" {
		log.ResponseData = datatypes.JSON([]byte(fmt.Sprintf(`{"post_id":%q,"simulated":%t}`, result.PostID, result.Simulated)))
	}
	return s.DB.Create(&log).Error
}

// SchedulePublication registers a future publication of content on a
// channel.
func (s *PublicationService) SchedulePublication(contentID, channelID uint, scheduledTime time.Time) (*models.ScheduledPublication, error) {
	var content models.GeneratedContent
	if err := s.DB.First(&content, contentID).Error; err != nil {
		return nil, err
	}
	var channel models.PublicationChannel
	if err := s.DB.First(&channel, channelID).Error; err != nil {
		return nil, err
	}

	scheduled := models.ScheduledPublication{
		ContentID:     contentID,
		ChannelID:     channelID,
		ScheduledTime: scheduledTime.UTC(),
		Status:        models.ScheduleStatusScheduled,
	}
	if err := s.DB.Create(&scheduled).Error; err != nil {
		return nil, err
	}

	s.Logger.Info("Publication scheduled",
		zap.Uint("content_id", contentID),
		zap.Uint("channel_id", channelID),
		zap.Time("scheduled_time", scheduled.ScheduledTime))
	return &scheduled, nil
}

// SweepResult aggregates one sweep over due scheduled publications.
type SweepResult struct {
	Processed int `json:"processed"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

// ProcessScheduledPublications publishes every due scheduled
// publication. Each row is finalized independently; one failure never
// stalls the rest.
func (s *PublicationService) ProcessScheduledPublications() (*SweepResult, error) {
	var due []models.ScheduledPublication
	err := s.DB.
		Where("status = ? AND scheduled_time <= ?", models.ScheduleStatusScheduled, time.Now().UTC()).
		Order("scheduled_time asc").
		Find(&due).Error
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Processed: len(due)}
	for _, row := range due {
		publish, err := s.Publish(row.ContentID, row.ChannelID)

		updates := map[string]interface{}{}
		switch {
		case err != nil:
			updates["status"] = models.ScheduleStatusFailed
			updates["error_message"] = err.Error()
			result.Failed++
		case publish.Success:
			now := time.Now().UTC()
			updates["status"] = models.ScheduleStatusPublished
			updates["published_at"] = now
			updates["publication_url"] = publish.PublicationURL
			result.Published++
		default:
			updates["status"] = models.ScheduleStatusFailed
			updates["error_message"] = publish.Error
			result.Failed++
		}

		if err := s.DB.Model(&models.ScheduledPublication{}).
			Where("id = ?", row.ID).
			Updates(updates).Error; err != nil {
			s.Logger.Error("Failed to finalize scheduled publication",
				zap.Uint("scheduled_id", row.ID), zap.Error(err))
		}
	}

	if result.Processed > 0 {
		s.Logger.Info("Scheduled publication sweep finished",
			zap.Int("processed", result.Processed),
			zap.Int("published", result.Published),
			zap.Int("failed", result.Failed))
	}
	return result, nil
}

// PublicationStatistics summarizes log activity over a window.
type PublicationStatistics struct {
	WindowDays  int              `json:"window_days"`
	Total       int64            `json:"total"`
	Succeeded   int64            `json:"succeeded"`
	Failed      int64            `json:"failed"`
	SuccessRate float64          `json:"success_rate"`
	ByChannel   map[string]int64 `json:"by_channel"`
}

// Statistics aggregates publication log rows of the last windowDays.
func (s *PublicationService) Statistics(windowDays int) (*PublicationStatistics, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	stats := &PublicationStatistics{
		WindowDays: windowDays,
		ByChannel:  map[string]int64{},
	}

	base := s.DB.Model(&models.PublicationLog{}).Where("published_at >= ?", since)
	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("publication_status = ?", models.PublicationStatusSuccess).
		Count(&stats.Succeeded).Error; err != nil {
		return nil, err
	}
	stats.Failed = stats.Total - stats.Succeeded
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Succeeded) / float64(stats.Total) * 100
	}

	type groupCount struct {
		Key   string
		Count int64
	}
	var byChannel []groupCount
	err := s.DB.Model(&models.PublicationLog{}).
		Select("publication_channels.channel_type as key, count(publication_logs.id) as count").
		Joins("JOIN publication_channels ON publication_channels.id = publication_logs.channel_id").
		Where("publication_logs.published_at >= ?", since).
		Group("publication_channels.channel_type").
		Scan(&byChannel).Error
	if err != nil {
		return nil, err
	}
	for _, g := range byChannel {
		stats.ByChannel[g.Key] = g.Count
	}

	return stats, nil
}
