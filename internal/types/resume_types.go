package types

// SectionLabel 表示章节标签，取值来自表头词表或哨兵值 SectionOther
type SectionLabel = string

const (
	// SectionOther 未匹配到任何表头之前的内容所属的哨兵标签
	SectionOther SectionLabel = "other"

	SectionSummary         SectionLabel = "summary"
	SectionObjective       SectionLabel = "objective"
	SectionProfile         SectionLabel = "profile"
	SectionEducation       SectionLabel = "education"
	SectionAcademic        SectionLabel = "academic"
	SectionExperience      SectionLabel = "experience"
	SectionWorkExperience  SectionLabel = "work experience"
	SectionSkills          SectionLabel = "skills"
	SectionTechnicalSkills SectionLabel = "technical skills"
	SectionCertifications  SectionLabel = "certifications"
	SectionCertificates    SectionLabel = "certificates"
)

// SectionMap 章节标签到章节文本的映射，构建后只读
type SectionMap map[SectionLabel]string

// Get 返回标签对应的文本以及是否存在
func (m SectionMap) Get(label SectionLabel) (string, bool) {
	text, ok := m[label]
	return text, ok
}

// FirstOf 按顺序探测标签，返回第一个存在的章节文本
func (m SectionMap) FirstOf(labels ...SectionLabel) (string, bool) {
	for _, label := range labels {
		if text, ok := m[label]; ok {
			return text, true
		}
	}
	return "", false
}

// EntityCategory 实体类别
type EntityCategory string

const (
	EntityPerson       EntityCategory = "PERSON"
	EntityOrganization EntityCategory = "ORG"
	EntityPlace        EntityCategory = "GPE"
	EntityDate         EntityCategory = "DATE"
)

// EntityCategories 识别器支持的全部类别
var EntityCategories = []EntityCategory{EntityPerson, EntityOrganization, EntityPlace, EntityDate}

// Entities 实体识别结果：类别 -> 按识别顺序排列的文本片段
type Entities map[EntityCategory][]string

// NewEntities 返回所有类别都已初始化为空切片的结果
func NewEntities() Entities {
	ents := make(Entities, len(EntityCategories))
	for _, c := range EntityCategories {
		ents[c] = []string{}
	}
	return ents
}

// First 返回某类别的第一个实体
func (e Entities) First(category EntityCategory) (string, bool) {
	spans := e[category]
	if len(spans) == 0 {
		return "", false
	}
	return spans[0], true
}

// Add 追加实体，忽略空白片段
func (e Entities) Add(category EntityCategory, span string) {
	if span == "" {
		return
	}
	e[category] = append(e[category], span)
}

// EducationEntry 一段教育经历
type EducationEntry struct {
	Institution *string `json:"institution"`
	Degree      *string `json:"degree"`
	StartYear   *string `json:"start_year"`
	EndYear     *string `json:"end_year"`
}

// ExperienceEntry 一段工作经历，日期保持原文不做归一化
type ExperienceEntry struct {
	Company     *string `json:"company"`
	Role        *string `json:"role"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Description *string `json:"description"`
}

// ResumeRecord 结构化后的简历
type ResumeRecord struct {
	Name           *string           `json:"name"`
	Email          *string           `json:"email"`
	Phone          *string           `json:"phone"`
	Location       *string           `json:"location"`
	Links          []string          `json:"links"`
	Summary        *string           `json:"summary"`
	Skills         []string          `json:"skills"`
	Experience     []ExperienceEntry `json:"experience"`
	Education      []EducationEntry  `json:"education"`
	Certifications []string          `json:"certifications"`
}

// NewResumeRecord 返回所有集合字段均为空切片（序列化为 [] 而不是 null）的记录
func NewResumeRecord() *ResumeRecord {
	return &ResumeRecord{
		Links:          []string{},
		Skills:         []string{},
		Experience:     []ExperienceEntry{},
		Education:      []EducationEntry{},
		Certifications: []string{},
	}
}
