package blogservice

import (
	"strings"

	"github.com/sushihentaime/blogsphere/internal/common"
)

const (
	maxTags      = 10
	maxTagLength = 30
)

func validateTitle(v *common.Validator, title string) {
	v.Check(strings.TrimSpace(title) != "", "title", "must be provided")
	v.Check(v.CheckStringLength(strings.TrimSpace(title), 3, 150), "title", "must be between 3 and 150 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(strings.TrimSpace(content) != "", "content", "must be provided")
}

func validateTags(v *common.Validator, tags []string) {
	v.Check(len(tags) <= maxTags, "tags", "must not contain more than 10 tags")

	for _, t := range tags {
		if len(t) > maxTagLength {
			v.AddError("tags", "each tag must not be more than 30 characters long")
			return
		}
	}
}

func validateQuery(v *common.Validator, query string) {
	v.Check(strings.TrimSpace(query) != "", "query", "must be provided")
	v.Check(len(query) <= 200, "query", "must not be more than 200 characters long")
}
