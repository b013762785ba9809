package gateway

import (
	"encoding/json"
	"time"
)

// CourseContext places a request inside the course structure.
type CourseContext struct {
	CourseID           string         `json:"courseId"`
	CourseTitle        string         `json:"courseTitle,omitempty"`
	ModuleID           string         `json:"moduleId,omitempty"`
	ModuleName         string         `json:"moduleName,omitempty"`
	LessonID           string         `json:"lessonId,omitempty"`
	LessonName         string         `json:"lessonName,omitempty"`
	ExistingBlocks     []ContentBlock `json:"existingBlocks,omitempty"`
	LearningObjectives []string       `json:"learningObjectives,omitempty"`
}

// ContentBlock is a block already present in the lesson.
type ContentBlock struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Content any    `json:"content,omitempty"`
}

// GenerationOptions is the raw options object of a generate request.
// Unknown keys are kept for fingerprinting and ignored for prompts.
type GenerationOptions map[string]any

// Option keys and their defaults.
const (
	OptionTone            = "tone"
	OptionReadingLevel    = "readingLevel"
	OptionLength          = "length"
	OptionIncludeExamples = "includeExamples"

	DefaultTone         = "conversational"
	DefaultReadingLevel = "college"
	DefaultLength       = "moderate"
)

// GenerationRequest asks for one new content block.
type GenerationRequest struct {
	BlockType string            `json:"blockType"`
	Prompt    string            `json:"prompt"`
	Context   *CourseContext    `json:"context"`
	Options   GenerationOptions `json:"options,omitempty"`
}

// ContentMetadata describes how a GeneratedContent was produced.
type ContentMetadata struct {
	BlockType   string    `json:"blockType"`
	GeneratedAt time.Time `json:"generatedAt"`
	PromptUsed  string    `json:"promptUsed"`
	TokensUsed  *int      `json:"tokensUsed,omitempty"`
}

// GeneratedContent is an upstream result. It is stored encoded in the cache
// so callers never share a mutable copy.
type GeneratedContent struct {
	Content  json.RawMessage `json:"content"`
	Metadata ContentMetadata `json:"metadata"`
}

// GenerationResult is the response of Generate.
type GenerationResult struct {
	GeneratedContent
	Cached bool `json:"cached"`
}

// RefinementType selects a refinement prompt.
type RefinementType string

const (
	RefineMakeShorter RefinementType = "make-shorter"
	RefineMakeLonger  RefinementType = "make-longer"
	RefineSimplify    RefinementType = "simplify"
	RefineAddExamples RefinementType = "add-examples"
	RefineChangeTone  RefinementType = "change-tone"
)

// RefinementTypes lists the recognized refinement types in display order.
var RefinementTypes = []RefinementType{
	RefineMakeShorter,
	RefineMakeLonger,
	RefineSimplify,
	RefineAddExamples,
	RefineChangeTone,
}

// RefineRequest asks for a rewrite of existing content.
type RefineRequest struct {
	Content        string         `json:"content"`
	RefinementType RefinementType `json:"refinementType"`
	Context        *CourseContext `json:"context"`
	// TargetTone is used by change-tone only.
	TargetTone string `json:"targetTone,omitempty"`
}

// RefineMetadata describes a refinement.
type RefineMetadata struct {
	RefinementType RefinementType `json:"refinementType"`
	OriginalLength int            `json:"originalLength"`
	RefinedLength  int            `json:"refinedLength"`
	RefinedAt      time.Time      `json:"refinedAt"`
	TokensUsed     *int           `json:"tokensUsed,omitempty"`
}

// RefineResult is the response of Refine.
type RefineResult struct {
	Content  string         `json:"content"`
	Metadata RefineMetadata `json:"metadata"`
}

// DefaultBlockCount is the outline size when the request leaves it unset.
const DefaultBlockCount = 10

// OutlineRequest asks for an ordered lesson outline.
type OutlineRequest struct {
	Topic      string         `json:"topic"`
	Objectives []string       `json:"objectives"`
	Context    *CourseContext `json:"context"`
	// BlockCount nil means DefaultBlockCount.
	BlockCount *int `json:"blockCount,omitempty"`
}

// BlockOutline is one planned block of an outline.
type BlockOutline struct {
	Type               string `json:"type"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	EstimatedTime      int    `json:"estimatedTime"`
	PlaceholderContent any    `json:"placeholderContent"`
}

// OutlineMetadata describes an outline.
type OutlineMetadata struct {
	Topic           string    `json:"topic"`
	ObjectivesCount int       `json:"objectivesCount"`
	BlocksGenerated int       `json:"blocksGenerated"`
	GeneratedAt     time.Time `json:"generatedAt"`
	TokensUsed      *int      `json:"tokensUsed,omitempty"`
}

// OutlineResult is the response of Outline.
type OutlineResult struct {
	Outline  []BlockOutline  `json:"outline"`
	Metadata OutlineMetadata `json:"metadata"`
}

// MaxAltTextLength caps generated alt text, in characters.
const MaxAltTextLength = 250

// AltTextRequest asks for alternative text for an image.
type AltTextRequest struct {
	ImageURL    string         `json:"imageUrl"`
	Description string         `json:"description,omitempty"`
	Context     *CourseContext `json:"context"`
}

// AltTextMetadata describes generated alt text.
type AltTextMetadata struct {
	ImageURL    string    `json:"imageUrl"`
	Length      int       `json:"length"`
	GeneratedAt time.Time `json:"generatedAt"`
	TokensUsed  *int      `json:"tokensUsed,omitempty"`
}

// AltTextResult is the response of AltText.
type AltTextResult struct {
	AltText  string          `json:"altText"`
	Metadata AltTextMetadata `json:"metadata"`
}
