package classifier

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// CategoryRule pairs a catalog entry with the vocabulary that scores it.
type CategoryRule struct {
	Category domain.Category
	Keywords []string
	Patterns []*regexp.Regexp
}

// Override forces a category's score when a strong phrase appears in the
// title, or in the leading window of the content when LeadingPhrases is set.
type Override struct {
	CategoryID     string
	TitlePhrases   []string
	LeadingPhrases []string
}

// Catalog is the immutable taxonomy plus the scoring tables.
// It is built once by DefaultCatalog and shared read-only.
type Catalog struct {
	rules        []CategoryRule
	byID         map[string]int
	overrides    []Override
	hardEvidence map[string][]string
	forced       map[domain.FileType]string
	unscored     map[string]bool
	fallbackID   string
}

// Categories returns the catalog entries in sort order.
func (c *Catalog) Categories() []domain.Category {
	out := make([]domain.Category, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Category
	}
	return out
}

// Category returns the entry with the given id.
func (c *Catalog) Category(id string) (domain.Category, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Category{}, false
	}
	return c.rules[i].Category, true
}

// Resolve maps a user-facing value (id, slug, English or local display
// name, any case) to a category id.
func (c *Catalog) Resolve(value string) (string, bool) {
	v := strings.TrimSpace(value)
	for _, r := range c.rules {
		cat := r.Category
		if strings.EqualFold(v, cat.ID) || strings.EqualFold(v, cat.Slug) ||
			strings.EqualFold(v, cat.Name) || v == cat.LocalName {
			return cat.ID, true
		}
	}
	return "", false
}

// ForcedCategory returns the category a file type is always assigned to.
func (c *Catalog) ForcedCategory(ft domain.FileType) (string, bool) {
	id, ok := c.forced[ft]
	return id, ok
}

// Fallback returns the uncategorized bucket.
func (c *Catalog) Fallback() domain.Category {
	cat, _ := c.Category(c.fallbackID)
	return cat
}

// DefaultCatalog returns the built-in ten-category taxonomy.
//
//nolint:funlen,lll // Catalog data is intentionally inline.
func DefaultCatalog() *Catalog {
	rules := []CategoryRule{
		{
			Category: domain.Category{
				ID: domain.CategoryProduct, Name: "Product", LocalName: "产品文档", Slug: "product",
				Description: "Product requirements (PRD/MRD), industry solutions, white papers and competitive analysis.",
				Icon:        "package", Color: "#3B82F6", SortOrder: 1,
			},
			Keywords: []string{"prd", "mrd", "商业计划", "解决方案", "白皮书", "竞品分析", "痛点", "业务场景", "产品架构", "需求"},
			Patterns: compile(`(?i)\b(prd|mrd)\b`, `痛点|业务场景|产品架构|解决方案`),
		},
		{
			Category: domain.Category{
				ID: domain.CategoryTech, Name: "Technical", LocalName: "技术文档", Slug: "tech",
				Description: "API documentation, test reports, system architecture and private deployment guides.",
				Icon:        "terminal", Color: "#8B5CF6", SortOrder: 2,
			},
			Keywords: []string{"api", "代码", "测试报告", "系统架构", "部署指南", "服务器配置", "测试用例", "环境", "接口", "架构"},
			Patterns: compile(`(?i)\b(api|sdk|http|https|rest|graphql)\b`, `测试报告|系统架构图|算力|私有化部署|测试用例`),
		},
		{
			Category: domain.Category{
				ID: domain.CategoryReport, Name: "Report", LocalName: "报表", Slug: "report",
				Description: "Bills of materials, quotations, cost accounting and statistical tables.",
				Icon:        "table", Color: "#10B981", SortOrder: 3,
			},
			Keywords: []string{"bom", "报价", "成本核算", "数据统计", "明细", "报表", "金额"},
			Patterns: compile(`(?i)\b(bom)\b`, `项目报价表|成本核算表|数据统计表`),
		},
		{
			Category: domain.Category{
				ID: domain.CategoryBidding, Name: "Bidding", LocalName: "标书", Slug: "bidding",
				Description: "Tender documents, bids, commercial and technical response forms and scoring criteria.",
				Icon:        "briefcase", Color: "#F59E0B", SortOrder: 4,
			},
			Keywords: []string{"招标", "投标", "商务技术响应", "评分标准", "询价单", "评标", "资质", "甲方", "标书"},
			Patterns: compile(`招标文件|投标书|商务技术响应表|评分标准`),
		},
		{
			Category: domain.Category{
				ID: domain.CategoryPolicy, Name: "Policy", LocalName: "政策文件", Slug: "policy",
				Description: "National standards, industry regulations and internal management rules.",
				Icon:        "landmark", Color: "#EF4444", SortOrder: 5,
			},
			Keywords: []string{"国家标准", "行业规范", "管理制度", "规定", "办法", "通知", "红头文件", "规章制度"},
			Patterns: compile(`国家标准|行业规范|内部管理制度`),
		},
		{
			Category: domain.Category{
				ID: domain.CategoryMeeting, Name: "Meeting Minutes", LocalName: "会议纪要", Slug: "meeting",
				Description: "Customer visit notes, weekly meeting minutes, retrospectives and requirement reviews.",
				Icon:        "users", Color: "#06B6D4", SortOrder: 6,
			},
			Keywords: []string{"交流", "访谈", "调研", "座谈", "汇报", "纪要", "会议", "Minutes", "Meeting", "拜访记录", "周会", "复盘", "需求评审", "与会者", "讨论决议", "待办事项", "todo"},
			Patterns: compile(`(?i)\b(todo|action item)\b`, `客户拜访记录|周会纪要|项目复盘|需求评审记录`),
		},
		{
			Category: domain.Category{
				ID: domain.CategoryTraining, Name: "Training", LocalName: "培训材料", Slug: "training",
				Description: "Enablement decks, onboarding material and operation manuals.",
				Icon:        "presentation", Color: "#84CC16", SortOrder: 7,
			},
			Keywords: []string{"赋能", "新员工", "入职", "操作手册", "目的", "流程介绍", "注意事项", "教程", "指引", "培训"},
			Patterns: compile(`产品赋能培训|新员工入职|操作手册`),
		},
		{
			Category: domain.Category{
				ID: domain.CategoryImage, Name: "Image", LocalName: "图片", Slug: "image",
				Description: "Image assets such as PNG and JPG files.",
				Icon:        "image", Color: "#F97316", SortOrder: 8,
			},
			Keywords: []string{"image", "photo", "picture", "screenshot", "diagram", "图片", "照片", "截图", "图表", "图像"},
		},
		{
			Category: domain.Category{
				ID: domain.CategoryReimbursement, Name: "Reimbursement", LocalName: "报销文件", Slug: "reimbursement",
				Description: "Electronic invoices (PDF/OFD), itineraries and taxi receipts.",
				Icon:        "receipt", Color: "#EC4899", SortOrder: 9,
			},
			Keywords: []string{"电子发票", "ofd", "行程单", "打车票", "发票代码", "价税合计", "开票日期", "水单", "报销"},
			Patterns: compile(`(?i)\b(ofd)\b`, `电子发票|行程单|打车票据|发票代码|价税合计`),
		},
		{
			Category: domain.Category{
				ID: domain.CategoryOther, Name: "Other", LocalName: "其他记录", Slug: "other",
				Description: "Fragmentary documents that fit no other category.",
				Icon:        "folder", Color: "#6B7280", SortOrder: 10,
			},
		},
	}

	byID := make(map[string]int, len(rules))
	for i, r := range rules {
		byID[r.Category.ID] = i
	}

	return &Catalog{
		rules: rules,
		byID:  byID,
		overrides: []Override{
			{
				CategoryID:     domain.CategoryProduct,
				TitlePhrases:   []string{"产品方案", "产品介绍", "product plan", "product introduction"},
				LeadingPhrases: []string{"产品方案", "product plan"},
			},
			{
				CategoryID:   domain.CategoryMeeting,
				TitlePhrases: []string{"交流", "访谈", "访谈纪要", "调研", "座谈", "汇报", "会议", "拜访", "meeting minutes"},
			},
			{
				CategoryID:   domain.CategoryReimbursement,
				TitlePhrases: []string{"发票", "invoice"},
			},
		},
		hardEvidence: map[string][]string{
			domain.CategoryBidding: {
				"招标", "投标", "评分标准", "偏离表", "废标", "开标", "标书", "评标", "招标文件", "询价单", "商务技术响应",
				"tender", "bid evaluation",
			},
		},
		forced: map[domain.FileType]string{
			domain.FileTypeImage:       domain.CategoryImage,
			domain.FileTypeXLSX:        domain.CategoryReport,
			domain.FileTypeFixedLayout: domain.CategoryReimbursement,
		},
		unscored:   map[string]bool{domain.CategoryImage: true, domain.CategoryOther: true},
		fallbackID: domain.CategoryOther,
	}
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}
