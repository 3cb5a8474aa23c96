package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "Quarterly Report", TitleFromPath("/data/docs/Quarterly Report.pdf"))
	assert.Equal(t, "archive.tar", TitleFromPath("archive.tar.gz"))
	assert.Equal(t, "README", TitleFromPath("README"))
}

func TestFileType_IsValid(t *testing.T) {
	for _, ft := range AllFileTypes {
		assert.True(t, ft.IsValid())
	}
	assert.False(t, FileType("doc").IsValid())
}

func TestDocumentRecord_Accessors(t *testing.T) {
	rec := &DocumentRecord{
		Categories: []Classification{
			{CategoryID: CategoryProduct, CategoryName: "Product"},
			{CategoryID: CategoryTech, CategoryName: "Technical"},
		},
		Keywords: []Keyword{{Keyword: "api"}, {Keyword: "gateway"}},
	}

	assert.Equal(t, []string{"product", "tech"}, rec.CategoryIDs())
	assert.Equal(t, []string{"Product", "Technical"}, rec.CategoryNames())
	assert.Equal(t, []string{"api", "gateway"}, rec.KeywordTexts())
}
