package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jusfiscal/models"
)

// completionStub fakes the chat completions endpoint, replying with a
// fixed assistant message.
func completionStub(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/chat/completions")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				},
			},
		})
	}))
}

func newContentService(t *testing.T, baseURL string) *ContentService {
	cfg := testConfig()
	cfg.OpenAIModel = "gpt-4"
	return &ContentService{
		Config: cfg,
		DB:     testDB(t),
		Logger: testLogger(),
		client: openai.NewClient(option.WithAPIKey("test"), option.WithBaseURL(baseURL)),
	}
}

func TestGenerateContentParsesAndPersists(t *testing.T) {
	srv := completionStub(t, "TÍTULO: Recupere ICMS-ST\nCONTEÚDO: Corpo do post.\nPALAVRAS-CHAVE: ICMS, restituição")
	defer srv.Close()

	s := newContentService(t, srv.URL)
	result, err := s.GenerateContent(context.Background(), GenerateInput{ContentType: "post", Topic: "ICMS-ST"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "Recupere ICMS-ST", result.Title)
	assert.Equal(t, []string{"ICMS", "restituição"}, result.Keywords)

	var stored models.GeneratedContent
	require.NoError(t, s.DB.First(&stored, result.ContentID).Error)
	assert.Equal(t, models.ContentStatusDraft, stored.Status)
	assert.Equal(t, "Corpo do post.", stored.Content)
}

func TestGenerateContentReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newContentService(t, srv.URL)
	result, err := s.GenerateContent(context.Background(), GenerateInput{ContentType: "post", Topic: "ICMS"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestGenerateIdeasParsesJSON(t *testing.T) {
	srv := completionStub(t, "```json\n[{\"topic\": \"Lei do Bem\", \"content_type\": \"article\", \"target_sector\": \"Tecnologia\", \"keywords\": [\"inovação\"], \"rationale\": \"alta demanda\"}]\n```")
	defer srv.Close()

	s := newContentService(t, srv.URL)
	ideas, err := s.GenerateIdeas(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "Lei do Bem", ideas[0].Topic)
	assert.Equal(t, "Tecnologia", ideas[0].TargetSector)
}

func TestParseGeneratedContentFullFormat(t *testing.T) {
	raw := `TÍTULO: Recupere créditos de PIS/COFINS
CONTEÚDO: Empresas do setor industrial podem recuperar valores pagos
indevidamente nos últimos cinco anos.

Procure uma análise especializada.
PALAVRAS-CHAVE: PIS, COFINS, créditos tributários`

	title, content, keywords := parseGeneratedContent(raw)
	assert.Equal(t, "Recupere créditos de PIS/COFINS", title)
	assert.Contains(t, content, "cinco anos")
	assert.Contains(t, content, "análise especializada")
	assert.Equal(t, []string{"PIS", "COFINS", "créditos tributários"}, keywords)
}

func TestParseGeneratedContentWithoutKeywords(t *testing.T) {
	raw := "TÍTULO: Um título\nCONTEÚDO: Um corpo de texto."

	title, content, keywords := parseGeneratedContent(raw)
	assert.Equal(t, "Um título", title)
	assert.Equal(t, "Um corpo de texto.", content)
	assert.Empty(t, keywords)
}

func TestParseGeneratedContentFallbackFirstLine(t *testing.T) {
	raw := `Recuperação tributária na prática
O modelo ignorou o formato pedido e escreveu texto corrido.
Segunda linha do corpo.`

	title, content, keywords := parseGeneratedContent(raw)
	assert.Equal(t, "Recuperação tributária na prática", title)
	assert.Contains(t, content, "texto corrido")
	assert.Contains(t, content, "Segunda linha")
	assert.Empty(t, keywords)
}

func TestParseGeneratedContentSingleLine(t *testing.T) {
	title, content, _ := parseGeneratedContent("Só uma linha")
	assert.Equal(t, "Só uma linha", title)
	assert.Equal(t, "Só uma linha", content)
}

func TestParseGeneratedContentCapsKeywords(t *testing.T) {
	raw := "TÍTULO: T\nCONTEÚDO: C\nPALAVRAS-CHAVE: a, b, c, d, e, f, g, h, i, j"
	_, _, keywords := parseGeneratedContent(raw)
	require.Len(t, keywords, maxContentKeywords)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g"}, keywords)
}

func TestParseGeneratedContentTrimsKeywordWhitespace(t *testing.T) {
	raw := "TÍTULO: T\nCONTEÚDO: C\nPALAVRAS-CHAVE:  ICMS ,  , Simples Nacional "
	_, _, keywords := parseGeneratedContent(raw)
	assert.Equal(t, []string{"ICMS", "Simples Nacional"}, keywords)
}

func TestBuildPromptPerContentType(t *testing.T) {
	s := &ContentService{Config: testConfig(), DB: testDB(t), Logger: testLogger()}

	article, err := s.buildPrompt(GenerateInput{ContentType: "article", Topic: "ICMS-ST"})
	require.NoError(t, err)
	assert.Contains(t, article, "artigo completo")
	assert.Contains(t, article, "ICMS-ST")
	assert.Contains(t, article, "TÍTULO:")
	assert.Contains(t, article, "5 a 7 palavras-chave")

	post, err := s.buildPrompt(GenerateInput{
		ContentType:  "post",
		Topic:        "Lei do Bem",
		TargetSector: "Tecnologia",
		Keywords:     []string{"inovação", "P&D"},
	})
	require.NoError(t, err)
	assert.Contains(t, post, "redes sociais")
	assert.Contains(t, post, "Tecnologia")
	assert.Contains(t, post, "inovação, P&D")
}
