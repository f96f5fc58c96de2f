package course

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

type LoadStatus string

const (
	StatusSuccess  LoadStatus = "success"
	StatusNotFound LoadStatus = "not_found"
	StatusError    LoadStatus = "error"
)

// Tier identifies which lookup produced a successful load.
type Tier string

const (
	TierFullText  Tier = "full_text"
	TierSummaries Tier = "summaries"
	TierFallback  Tier = "level_fallback"
)

// SummaryQuery selects summaries of a level whose category contains
// CategoryLike or whose file name contains FileNameLike (case-insensitive).
type SummaryQuery struct {
	Level        Level
	CategoryLike string
	FileNameLike string
}

// ContentStore is the read side of the ingested course content.
// "No rows" must be reported as an empty result, never as an error.
type ContentStore interface {
	FindFullContent(ctx context.Context, courseId string) (content string, found bool, err error)
	FindSummaries(ctx context.Context, query SummaryQuery) ([]Summary, error)
	FindSummariesByLevel(ctx context.Context, level Level) ([]Summary, error)
}

// ResultCache memoizes successful loads. Implementations must be safe for
// concurrent use; misses and cache failures are both reported as ok=false.
type ResultCache interface {
	Get(ctx context.Context, courseId string) (*LoadResult, bool)
	Set(ctx context.Context, courseId string, result *LoadResult)
}

type LoadResult struct {
	CourseId      string     `json:"courseId"`
	Content       *string    `json:"content"`
	Status        LoadStatus `json:"status"`
	Error         string     `json:"error,omitempty"`
	HasContent    bool       `json:"hasContent"`
	Source        string     `json:"source"`
	Tier          Tier       `json:"tier,omitempty"`
	DocumentCount int        `json:"documentCount,omitempty"`
}

type Loader struct {
	catalog *Catalog
	store   ContentStore
	cache   ResultCache
	log     *zap.Logger
}

type LoaderOption func(*Loader)

func WithResultCache(cache ResultCache) LoaderOption {
	return func(l *Loader) {
		l.cache = cache
	}
}

func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

func NewLoader(catalog *Catalog, store ContentStore, opts ...LoaderOption) *Loader {
	l := &Loader{
		catalog: catalog,
		store:   store,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the content of a catalog course, trying the full text first,
// then targeted summaries, then a level-wide keyword fallback. A store error
// stops the lookup; only empty results fall through to the next tier.
func (l *Loader) Load(ctx context.Context, courseId string) (result *LoadResult) {
	defer func() {
		if rec := recover(); rec != nil {
			l.log.Error("content store panicked", zap.String("course_id", courseId), zap.Any("panic", rec))
			result = errorResult(courseId, fmt.Sprintf("Erreur technique lors du chargement du cours %s. Veuillez réessayer.", courseId))
		}
	}()

	crs, ok := l.catalog.FindById(courseId)
	if !ok {
		return errorResult(courseId, fmt.Sprintf("Cours %s non trouvé dans la liste des cours.", courseId))
	}

	if l.cache != nil {
		if cached, hit := l.cache.Get(ctx, courseId); hit {
			l.log.Debug("content cache hit", zap.String("course_id", courseId))
			return cached
		}
	}

	res, err := l.load(ctx, crs)
	if err != nil {
		l.log.Error("content store failed", zap.String("course_id", courseId), zap.Error(err))
		return errorResult(courseId, fmt.Sprintf("Impossible de charger le contenu du cours %s. Erreur: %s", courseId, err.Error()))
	}

	if res.Status == StatusSuccess && l.cache != nil {
		l.cache.Set(ctx, courseId, res)
	}
	return res
}

func (l *Loader) load(ctx context.Context, crs Course) (*LoadResult, error) {
	content, found, err := l.store.FindFullContent(ctx, crs.Id)
	if err != nil {
		return nil, fmt.Errorf("full content: %w", err)
	}
	if found && strings.TrimSpace(content) != "" {
		l.log.Info("loaded full course content", zap.String("course_id", crs.Id), zap.Int("size", len(content)))
		return successResult(crs.Id, FullTextEnvelope(crs, content), SourceFullText, TierFullText, 1), nil
	}

	summaries, err := l.store.FindSummaries(ctx, SummaryQuery{
		Level:        crs.Level,
		CategoryLike: crs.Name,
		FileNameLike: lastWord(crs.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("targeted summaries: %w", err)
	}
	if len(summaries) > 0 {
		l.logDocuments(crs.Id, summaries, false)
		compiled := CompileSummaries(summaries)
		return successResult(crs.Id, SummaryEnvelope(crs, compiled, len(summaries), false), SourceSummaries, TierSummaries, len(summaries)), nil
	}

	levelSummaries, err := l.store.FindSummariesByLevel(ctx, crs.Level)
	if err != nil {
		return nil, fmt.Errorf("level summaries: %w", err)
	}
	relevant := FilterByKeywords(levelSummaries, NameKeywords(crs.Name))
	if len(relevant) > 0 {
		l.logDocuments(crs.Id, relevant, true)
		compiled := CompileSummaries(relevant)
		return successResult(crs.Id, SummaryEnvelope(crs, compiled, len(relevant), true), SourceSummaries, TierFallback, len(relevant)), nil
	}

	l.log.Warn("no content found for course", zap.String("course_id", crs.Id))
	return &LoadResult{
		CourseId:   crs.Id,
		Status:     StatusNotFound,
		Error:      fmt.Sprintf("Le contenu du cours %s n'est pas disponible dans la base de données. Veuillez vérifier que les PDFs ont été correctement importés.", crs.Id),
		HasContent: false,
		Source:     SourceFullText,
	}, nil
}

func (l *Loader) logDocuments(courseId string, docs []Summary, fallback bool) {
	files := make([]string, len(docs))
	for i, d := range docs {
		files[i] = d.FileName
	}
	l.log.Info("loaded course summaries",
		zap.String("course_id", courseId),
		zap.Bool("fallback", fallback),
		zap.Strings("files", files),
	)
}

// NameKeywords returns the lowercased course-name tokens longer than three characters.
func NameKeywords(name string) []string {
	var out []string
	for _, w := range strings.Split(strings.ToLower(name), " ") {
		if utf8.RuneCountInString(w) > 3 {
			out = append(out, w)
		}
	}
	return out
}

// FilterByKeywords keeps summaries whose category, file name or body contains
// any keyword (case-insensitive). Input order is preserved.
func FilterByKeywords(summaries []Summary, keywords []string) []Summary {
	var out []Summary
	for _, s := range summaries {
		category := strings.ToLower(s.Category)
		fileName := strings.ToLower(s.FileName)
		body := strings.ToLower(s.Summary)
		for _, kw := range keywords {
			if strings.Contains(category, kw) || strings.Contains(fileName, kw) || strings.Contains(body, kw) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func lastWord(name string) string {
	parts := strings.Split(name, " ")
	return parts[len(parts)-1]
}

func successResult(courseId, content, source string, tier Tier, docs int) *LoadResult {
	return &LoadResult{
		CourseId:      courseId,
		Content:       &content,
		Status:        StatusSuccess,
		HasContent:    true,
		Source:        source,
		Tier:          tier,
		DocumentCount: docs,
	}
}

func errorResult(courseId, msg string) *LoadResult {
	return &LoadResult{
		CourseId:   courseId,
		Status:     StatusError,
		Error:      msg,
		HasContent: false,
		Source:     SourceFullText,
	}
}
