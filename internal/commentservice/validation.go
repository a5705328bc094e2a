package commentservice

import (
	"strings"

	"github.com/sushihentaime/blogsphere/internal/common"
)

func validateContent(v *common.Validator, content string) {
	v.Check(strings.TrimSpace(content) != "", "content", "must be provided")
	v.Check(len(content) <= 2000, "content", "must not be more than 2000 characters long")
}
