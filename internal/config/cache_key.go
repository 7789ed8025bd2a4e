package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TeacherSessionKey returns the cache key for one issued teacher token
func (r *CacheKeyStruct) TeacherSessionKey(teacherID, jti string) string {
	return fmt.Sprintf("teacher:%s:session:%s", teacherID, jti)
}

// StudentPaperKey returns the cache key for an exam's student-facing paper
func (r *CacheKeyStruct) StudentPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// ExamAnalysisKey returns the cache key for an exam's analysis report
func (r *CacheKeyStruct) ExamAnalysisKey(examID string) string {
	return fmt.Sprintf("exam:%s:analysis", examID)
}

// DraftAnswersKey returns the cache key for a student's autosaved answers
func (r *CacheKeyStruct) DraftAnswersKey(examID, draftID string) string {
	return fmt.Sprintf("exam:%s:draft:%s:answers", examID, draftID)
}

var CacheKey = NewCacheKeyStruct()
