package extractor

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"resume-extractor/internal/logger"
	"resume-extractor/internal/types"
)

// 字段回退链：按顺序探测，第一个存在的章节胜出，不合并
var (
	skillsChain         = []string{types.SectionSkills, types.SectionTechnicalSkills}
	educationChain      = []string{types.SectionEducation, types.SectionAcademic}
	experienceChain     = []string{types.SectionExperience, types.SectionWorkExperience}
	summaryChain        = []string{types.SectionSummary, types.SectionObjective, types.SectionProfile}
	certificationsChain = []string{types.SectionCertifications, types.SectionCertificates}
)

type contactFields struct {
	email, phone string
	links        []string
}

// ToStructuredRecord 把全文组装成 ResumeRecord。
//
// 章节切分、字段正则和实体识别互不依赖，并发执行；识别器失败时按空结果处理。
// 邮箱、电话、链接始终取自全文，与章节无关。
func (e *Extractor) ToStructuredRecord(ctx context.Context, text string) *types.ResumeRecord {
	var (
		sections types.SectionMap
		contact  contactFields
		entities = types.NewEntities()
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sections = e.SplitSections(text)
		return nil
	})
	g.Go(func() error {
		contact.email, _ = ExtractEmail(text)
		contact.phone, _ = ExtractPhone(text)
		contact.links = ExtractLinks(text)
		return nil
	})
	g.Go(func() error {
		ents, err := e.recognize(gctx, text)
		if err != nil {
			return err
		}
		entities = ents
		return nil
	})
	// 只有识别器分支会返回错误，另两路结果不受影响
	if err := g.Wait(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("实体识别失败，按空结果处理")
	}

	record := types.NewResumeRecord()
	if name, ok := entities.First(types.EntityPerson); ok {
		record.Name = optional(name)
	}
	if place, ok := entities.First(types.EntityPlace); ok {
		record.Location = optional(place)
	}
	record.Email = optional(contact.email)
	record.Phone = optional(contact.phone)
	record.Links = contact.links

	skillsText, _ := sections.FirstOf(skillsChain...)
	record.Skills = e.ExtractSkills(skillsText)

	educationText, _ := sections.FirstOf(educationChain...)
	record.Education = e.ExtractEducation(educationText)

	experienceText, _ := sections.FirstOf(experienceChain...)
	record.Experience = e.ExtractExperience(experienceText)

	if summary, ok := sections.FirstOf(summaryChain...); ok {
		record.Summary = optional(summary)
	}

	if certText, ok := sections.FirstOf(certificationsChain...); ok {
		for _, line := range splitLines(certText) {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				record.Certifications = append(record.Certifications, trimmed)
			}
		}
	}

	return record
}

// recognize 调用识别器，输入按字符数截断；未配置识别器时返回空结果
func (e *Extractor) recognize(ctx context.Context, text string) (types.Entities, error) {
	if e.recognizer == nil {
		return types.NewEntities(), nil
	}

	ents, err := e.recognizer.Recognize(ctx, CapRunes(text, e.maxEntityInput))
	if err != nil {
		return nil, err
	}
	if ents == nil {
		return types.NewEntities(), nil
	}
	return ents, nil
}

// CapRunes 按字符（rune）截断文本
func CapRunes(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	count := 0
	for i := range text {
		if count == max {
			return text[:i]
		}
		count++
	}
	return text
}
