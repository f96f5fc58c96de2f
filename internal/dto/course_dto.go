package dto

type CourseResponse struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

type ResolveCourseRequest struct {
	Query string `query:"query" validate:"required,max=2000"`
	Level string `query:"level" validate:"omitempty,oneof=L1 L2 L3 CRFPA"`
}

type ResolveCourseResponse struct {
	Course     *CourseResponse `json:"course"`
	Confidence string          `json:"confidence"`
	Score      int             `json:"score"`
}
