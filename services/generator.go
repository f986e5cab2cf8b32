package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jusfiscal/config"
	"jusfiscal/models"
)

// systemPrompt anchors every generation request in the agency's
// domain and voice.
const systemPrompt = `Você é um especialista em direito tributário brasileiro trabalhando para a JusFiscal, ` +
	`uma empresa especializada em recuperação de créditos tributários para empresas. ` +
	`Escreva sempre em português do Brasil, em tom profissional mas acessível, ` +
	`focando em oportunidades concretas de recuperação tributária (PIS/COFINS, ICMS, IPI, INSS).`

// ContentService generates marketing content drafts with the OpenAI
// Chat Completions API.
type ContentService struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
	client openai.Client
}

// NewContentService creates a content service.
func NewContentService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *ContentService {
	return &ContentService{
		Config: cfg,
		DB:     db,
		Logger: logger,
		client: openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
	}
}

// GenerateInput configures a content generation request.
type GenerateInput struct {
	ContentType  string   `json:"content_type" binding:"required"`
	Topic        string   `json:"topic" binding:"required"`
	TargetSector string   `json:"target_sector"`
	Keywords     []string `json:"keywords"`
	TemplateID   *uint    `json:"template_id"`
}

// GenerateResult reports a content generation attempt.
type GenerateResult struct {
	Success   bool     `json:"success"`
	ContentID uint     `json:"content_id,omitempty"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// GenerateContent asks the model for a piece of content, parses the
// fixed reply format and stores the result as a draft.
func (s *ContentService) GenerateContent(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	prompt, err := s.buildPrompt(input)
	if err != nil {
		return nil, err
	}

	response, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.Config.OpenAIModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2000),
	})
	if err != nil {
		s.Logger.Warn("Content generation failed", zap.Error(err))
		return &GenerateResult{Success: false, Error: err.Error()}, nil
	}
	if len(response.Choices) == 0 {
		return &GenerateResult{Success: false, Error: "empty response from model"}, nil
	}

	title, body, keywords := parseGeneratedContent(response.Choices[0].Message.Content)
	if len(keywords) == 0 {
		keywords = input.Keywords
	}

	content := models.GeneratedContent{
		Title:        title,
		Content:      body,
		ContentType:  input.ContentType,
		TargetSector: input.TargetSector,
		TemplateID:   input.TemplateID,
		Keywords:     datatypes.NewJSONSlice(keywords),
		Status:       models.ContentStatusDraft,
	}
	if err := s.DB.Create(&content).Error; err != nil {
		return nil, err
	}

	s.Logger.Info("Content generated",
		zap.Uint("content_id", content.ID),
		zap.String("content_type", input.ContentType),
		zap.String("topic", input.Topic))

	return &GenerateResult{
		Success:   true,
		ContentID: content.ID,
		Title:     title,
		Content:   body,
		Keywords:  keywords,
	}, nil
}

// buildPrompt assembles the user prompt for a generation request from
// the content type, topic, sector and an optional stored template.
func (s *ContentService) buildPrompt(input GenerateInput) (string, error) {
	var sb strings.Builder

	switch input.ContentType {
	case "article":
		sb.WriteString("Escreva um artigo completo para o blog da JusFiscal sobre: ")
		sb.WriteString(input.Topic)
		sb.WriteString("\n\nO artigo deve ter entre 800 e 1200 palavras, com introdução, desenvolvimento e conclusão com chamada para ação.")
	case "post":
		sb.WriteString("Escreva um post para redes sociais (LinkedIn) sobre: ")
		sb.WriteString(input.Topic)
		sb.WriteString("\n\nO post deve ser direto, ter no máximo 1200 caracteres e terminar com uma chamada para ação.")
	case "email":
		sb.WriteString("Escreva um email de prospecção comercial sobre: ")
		sb.WriteString(input.Topic)
		sb.WriteString("\n\nO email deve ser curto, personalizado e convidar para uma conversa.")
	default:
		sb.WriteString("Escreva um conteúdo de marketing sobre: ")
		sb.WriteString(input.Topic)
	}

	if input.TargetSector != "" {
		sb.WriteString(fmt.Sprintf("\n\nO conteúdo é direcionado a empresas do setor: %s.", input.TargetSector))
	}
	if len(input.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf("\n\nIncorpore naturalmente as palavras-chave: %s.", strings.Join(input.Keywords, ", ")))
	}

	if input.TemplateID != nil {
		var template models.ContentTemplate
		if err := s.DB.First(&template, *input.TemplateID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return "", err
			}
		} else {
			sb.WriteString("\n\nUse a seguinte estrutura como base:\n")
			sb.WriteString(template.TemplateContent)
		}
	}

	sb.WriteString("\n\nResponda EXATAMENTE neste formato:\n")
	sb.WriteString("TÍTULO: [título do conteúdo]\n")
	sb.WriteString("CONTEÚDO: [corpo do conteúdo]\n")
	sb.WriteString("PALAVRAS-CHAVE: [5 a 7 palavras-chave separadas por vírgula]")

	return sb.String(), nil
}

// maxContentKeywords caps the keyword list even when the model ignores
// the 5-7 request in the prompt.
const maxContentKeywords = 7

// parseGeneratedContent splits a model reply on the fixed markers.
// Replies that ignore the format fall back to first line as title and
// the remainder as body.
func parseGeneratedContent(raw string) (title, content string, keywords []string) {
	text := strings.TrimSpace(raw)

	titleIdx := strings.Index(text, "TÍTULO:")
	contentIdx := strings.Index(text, "CONTEÚDO:")
	keywordsIdx := strings.Index(text, "PALAVRAS-CHAVE:")

	if titleIdx >= 0 && contentIdx > titleIdx {
		title = strings.TrimSpace(text[titleIdx+len("TÍTULO:") : contentIdx])
		if keywordsIdx > contentIdx {
			content = strings.TrimSpace(text[contentIdx+len("CONTEÚDO:") : keywordsIdx])
			for _, kw := range strings.Split(text[keywordsIdx+len("PALAVRAS-CHAVE:"):], ",") {
				kw = strings.TrimSpace(kw)
				if kw == "" {
					continue
				}
				keywords = append(keywords, kw)
				if len(keywords) == maxContentKeywords {
					break
				}
			}
		} else {
			content = strings.TrimSpace(text[contentIdx+len("CONTEÚDO:"):])
		}
		return title, content, keywords
	}

	lines := strings.SplitN(text, "\n", 2)
	title = strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		content = strings.TrimSpace(lines[1])
	} else {
		content = title
	}
	return title, content, nil
}

// ContentIdea is one suggestion from GenerateIdeas.
type ContentIdea struct {
	Topic        string   `json:"topic"`
	ContentType  string   `json:"content_type"`
	TargetSector string   `json:"target_sector"`
	Keywords     []string `json:"keywords"`
	Rationale    string   `json:"rationale"`
}

// GenerateIdeas asks the model for fresh content ideas as JSON.
func (s *ContentService) GenerateIdeas(ctx context.Context, count int) ([]ContentIdea, error) {
	if count <= 0 {
		count = 5
	}

	prompt := fmt.Sprintf(`Sugira %d ideias de conteúdo de marketing para a JusFiscal sobre recuperação de créditos tributários.

Responda APENAS com um array JSON neste formato:
[{"topic": "...", "content_type": "article|post|email", "target_sector": "...", "keywords": ["..."], "rationale": "..."}]`, count)

	response, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.Config.OpenAIModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.8),
		MaxTokens:   openai.Int(1500),
	})
	if err != nil {
		return nil, fmt.Errorf("idea generation failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	text := strings.TrimSpace(response.Choices[0].Message.Content)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var ideas []ContentIdea
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &ideas); err != nil {
		return nil, fmt.Errorf("failed to parse idea response: %w", err)
	}
	return ideas, nil
}

// GenerateFromTopics picks the highest-priority stored topics and
// generates one draft per topic. Used by the scheduler.
func (s *ContentService) GenerateFromTopics(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 3
	}

	var topics []models.ContentTopic
	if err := s.DB.Order("priority desc").Limit(limit).Find(&topics).Error; err != nil {
		return 0, err
	}

	generated := 0
	for _, topic := range topics {
		sector := ""
		if len(topic.TargetSectors) > 0 {
			sector = topic.TargetSectors[0]
		}
		result, err := s.GenerateContent(ctx, GenerateInput{
			ContentType:  "article",
			Topic:        topic.Topic,
			TargetSector: sector,
			Keywords:     topic.Keywords,
		})
		if err != nil {
			s.Logger.Warn("Scheduled generation failed",
				zap.Uint("topic_id", topic.ID), zap.Error(err))
			continue
		}
		if result.Success {
			generated++
		}
	}

	s.Logger.Info("Scheduled content generation finished",
		zap.Int("generated", generated), zap.Time("at", time.Now()))
	return generated, nil
}
