package gateway

import (
	"fmt"
	"strconv"
	"strings"
)

// lengths lists the accepted values of the length option.
var lengths = []string{"brief", "moderate", "thorough"}

// resolvedOptions is GenerationOptions merged with defaults.
type resolvedOptions struct {
	Tone            string
	ReadingLevel    string
	Length          string
	IncludeExamples bool
}

// resolveOptions merges opts over the defaults. Values of the wrong type
// are rejected by validateOptions before this runs.
func resolveOptions(opts GenerationOptions) resolvedOptions {
	r := resolvedOptions{
		Tone:            DefaultTone,
		ReadingLevel:    DefaultReadingLevel,
		Length:          DefaultLength,
		IncludeExamples: true,
	}
	if v, ok := opts[OptionTone].(string); ok && v != "" {
		r.Tone = v
	}
	if v, ok := opts[OptionReadingLevel].(string); ok && v != "" {
		r.ReadingLevel = v
	}
	if v, ok := opts[OptionLength].(string); ok && v != "" {
		r.Length = v
	}
	if v, ok := opts[OptionIncludeExamples].(bool); ok {
		r.IncludeExamples = v
	}
	return r
}

func existingBlocksSummary(blocks []ContentBlock) string {
	if len(blocks) == 0 {
		return "- (none)"
	}
	items := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Title != "" {
			items = append(items, fmt.Sprintf("%s: %s", b.Type, b.Title))
		} else {
			items = append(items, b.Type)
		}
	}
	return bulletList(items)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// generateVars builds the template variables of a generate request.
func generateVars(req GenerationRequest, opts resolvedOptions) map[string]string {
	cc := req.Context
	examples := "Do not include worked examples."
	if opts.IncludeExamples {
		examples = "Include concrete examples where they help understanding."
	}
	return map[string]string{
		"prompt":              strings.TrimSpace(req.Prompt),
		"blockType":           req.BlockType,
		"courseId":            cc.CourseID,
		"courseTitle":         orDefault(cc.CourseTitle, "Untitled course"),
		"moduleName":          orDefault(cc.ModuleName, "(not specified)"),
		"lessonName":          orDefault(cc.LessonName, "(not specified)"),
		"learningObjectives":  bulletList(cc.LearningObjectives),
		"existingBlocks":      existingBlocksSummary(cc.ExistingBlocks),
		"tone":                opts.Tone,
		"readingLevel":        opts.ReadingLevel,
		"length":              opts.Length,
		"includeExamples":     strconv.FormatBool(opts.IncludeExamples),
		"examplesInstruction": examples,
	}
}

var refinementInstructions = map[RefinementType]string{
	RefineMakeShorter: "Make the content noticeably shorter while keeping every key point.",
	RefineMakeLonger:  "Expand the content with more explanation and detail without changing its meaning.",
	RefineSimplify:    "Rewrite the content in simpler language for a less experienced reader.",
	RefineAddExamples: "Add concrete, realistic examples that illustrate the main points.",
	RefineChangeTone:  "Rewrite the content in a %s tone.",
}

// refinePrompt builds the prompt of a refine request.
func refinePrompt(req RefineRequest) string {
	instruction := refinementInstructions[req.RefinementType]
	if req.RefinementType == RefineChangeTone {
		instruction = fmt.Sprintf(instruction, orDefault(req.TargetTone, DefaultTone))
	}

	var b strings.Builder
	if title := req.Context.CourseTitle; title != "" {
		fmt.Fprintf(&b, "You are editing content for the course %q.\n", title)
	} else {
		b.WriteString("You are editing course content.\n")
	}
	b.WriteString(instruction)
	b.WriteString("\nReturn only the refined content with no commentary.\n\nContent:\n")
	b.WriteString(req.Content)
	return b.String()
}

// outlinePrompt builds the prompt of an outline request.
func outlinePrompt(req OutlineRequest, blockCount int) string {
	cc := req.Context
	var b strings.Builder
	fmt.Fprintf(&b, "You are an instructional designer planning a lesson for the course %q, module %q.\n", cc.CourseTitle, cc.ModuleName)
	fmt.Fprintf(&b, "Topic: %s\n", strings.TrimSpace(req.Topic))
	b.WriteString("Learning objectives:\n")
	b.WriteString(bulletList(req.Objectives))
	fmt.Fprintf(&b, "\n\nPlan exactly %d content blocks in presentation order.\n", blockCount)
	b.WriteString(`Respond with a JSON array only. Each element: {"type": string, "title": string, "description": string, "estimatedTime": number (minutes)}.`)
	return b.String()
}

// altTextPrompt builds the prompt of an alt-text request.
func altTextPrompt(req AltTextRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write alternative text for an image used in an online course (at most %d characters).\n", MaxAltTextLength)
	fmt.Fprintf(&b, "Image URL: %s\n", strings.TrimSpace(req.ImageURL))
	if d := strings.TrimSpace(req.Description); d != "" {
		fmt.Fprintf(&b, "Author's description: %s\n", d)
	}
	if title := req.Context.CourseTitle; title != "" {
		fmt.Fprintf(&b, "Course: %s\n", title)
	}
	if lesson := req.Context.LessonName; lesson != "" {
		fmt.Fprintf(&b, "Lesson: %s\n", lesson)
	}
	b.WriteString("Describe what matters for a learner who cannot see the image. Return only the alt text.")
	return b.String()
}
