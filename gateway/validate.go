package gateway

import (
	"slices"
	"strings"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateContext(cc *CourseContext) error {
	if cc == nil {
		return invalid("context", "is required")
	}
	if blank(cc.CourseID) {
		return invalid("context.courseId", "is required")
	}
	return nil
}

func validateOptions(opts GenerationOptions) error {
	for _, key := range []string{OptionTone, OptionReadingLevel, OptionLength} {
		v, ok := opts[key]
		if !ok || v == nil {
			continue
		}
		if _, isString := v.(string); !isString {
			return invalid("options."+key, "must be a string")
		}
	}
	if v, ok := opts[OptionLength].(string); ok && v != "" && !slices.Contains(lengths, v) {
		return invalid("options."+OptionLength, "must be one of %s", strings.Join(lengths, ", "))
	}
	if v, ok := opts[OptionIncludeExamples]; ok && v != nil {
		if _, isBool := v.(bool); !isBool {
			return invalid("options."+OptionIncludeExamples, "must be a boolean")
		}
	}
	return nil
}

// Validate checks a generate request.
func (r GenerationRequest) Validate() error {
	if blank(r.BlockType) {
		return invalid("blockType", "is required")
	}
	if blank(r.Prompt) {
		return invalid("prompt", "is required")
	}
	if err := validateContext(r.Context); err != nil {
		return err
	}
	return validateOptions(r.Options)
}

// Valid reports whether t is a recognized refinement type.
func (t RefinementType) Valid() bool {
	return slices.Contains(RefinementTypes, t)
}

func refinementTypeList() string {
	names := make([]string, len(RefinementTypes))
	for i, t := range RefinementTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// Validate checks a refine request.
func (r RefineRequest) Validate() error {
	if blank(r.Content) {
		return invalid("content", "is required")
	}
	if !r.RefinementType.Valid() {
		return invalid("refinementType", "must be one of %s", refinementTypeList())
	}
	return validateContext(r.Context)
}

// Validate checks an outline request. Outlines need full placement
// information, so module and course titles are required too.
func (r OutlineRequest) Validate() error {
	if blank(r.Topic) {
		return invalid("topic", "is required")
	}
	if len(r.Objectives) == 0 {
		return invalid("objectives", "must contain at least one objective")
	}
	for _, o := range r.Objectives {
		if blank(o) {
			return invalid("objectives", "must not contain empty objectives")
		}
	}
	if err := validateContext(r.Context); err != nil {
		return err
	}
	required := []struct{ field, value string }{
		{"context.courseTitle", r.Context.CourseTitle},
		{"context.moduleId", r.Context.ModuleID},
		{"context.moduleName", r.Context.ModuleName},
	}
	for _, f := range required {
		if blank(f.value) {
			return invalid(f.field, "is required")
		}
	}
	if r.BlockCount != nil && *r.BlockCount < 0 {
		return invalid("blockCount", "must not be negative")
	}
	return nil
}

// blockCount returns the requested count, DefaultBlockCount when unset or zero.
func (r OutlineRequest) blockCount() int {
	if r.BlockCount == nil || *r.BlockCount == 0 {
		return DefaultBlockCount
	}
	return *r.BlockCount
}

// Validate checks an alt-text request.
func (r AltTextRequest) Validate() error {
	if blank(r.ImageURL) {
		return invalid("imageUrl", "is required")
	}
	return validateContext(r.Context)
}
