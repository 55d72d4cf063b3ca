package dataset

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Default generation shape constants.
const (
	defaultPrograms          = 1
	defaultPOsPerProgram     = 6
	defaultCoursesPerProgram = 4
	defaultCOsPerCourse      = 4
	defaultStudentsPerCourse = 40
	defaultQuestionsPerCO    = 3
	defaultMaxMarks          = 10
	randomFloatDivisor       = 1000000
)

// Performer profile cases used to spread mastery across the cohort.
const (
	caseStrongPerformer = 0
	caseSolidPerformer  = 1
	caseWeakPerformer   = 2
	caseMixedPerformer  = 3
	performerCases      = 4
)

// GenConfig shapes the synthetic dataset.
type GenConfig struct {
	Programs          int
	POsPerProgram     int
	CoursesPerProgram int
	COsPerCourse      int
	StudentsPerCourse int
	QuestionsPerCO    int
}

// DefaultGenConfig returns a small but realistic shape.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Programs:          defaultPrograms,
		POsPerProgram:     defaultPOsPerProgram,
		CoursesPerProgram: defaultCoursesPerProgram,
		COsPerCourse:      defaultCOsPerCourse,
		StudentsPerCourse: defaultStudentsPerCourse,
		QuestionsPerCO:    defaultQuestionsPerCO,
	}
}

// JSON shapes mirroring the loader's expected export format.
type genQuestion struct {
	ID       string  `json:"id"`
	CO       string  `json:"co"`
	MaxMarks float64 `json:"max_marks"`
}

type genAssessment struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Questions []genQuestion `json:"questions"`
}

type genOutcome struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type genSection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type genCourse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Title       string          `json:"title"`
	Target      float64         `json:"target"`
	Levels      [3]float64      `json:"levels"`
	Sections    []genSection    `json:"sections"`
	Outcomes    []genOutcome    `json:"outcomes"`
	Assessments []genAssessment `json:"assessments"`
}

type genProgramOutcome struct {
	ID          string   `json:"id"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Indirect    *float64 `json:"indirect_attainment,omitempty"`
}

type genProgram struct {
	ID       string              `json:"id"`
	Code     string              `json:"code"`
	Name     string              `json:"name"`
	Outcomes []genProgramOutcome `json:"outcomes"`
}

type genStudent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section"`
	Active  bool   `json:"active"`
}

type genEnrollment struct {
	Student string `json:"student"`
	Course  string `json:"course"`
	Active  bool   `json:"active"`
}

type genMark struct {
	Student  string  `json:"student"`
	Question string  `json:"question"`
	Score    float64 `json:"score"`
}

type genMapping struct {
	CO    string `json:"co"`
	PO    string `json:"po"`
	Level int    `json:"level"`
}

type genDataset struct {
	Programs    []genProgram    `json:"programs"`
	Courses     []genCourse     `json:"courses"`
	Students    []genStudent    `json:"students"`
	Enrollments []genEnrollment `json:"enrollments"`
	Marks       []genMark       `json:"marks"`
	Mappings    []genMapping    `json:"mappings"`
}

// randomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomInt returns a random int in [0, n).
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// scoreFraction returns the fraction of max marks a performer profile earns
// on one question.
func scoreFraction(profile int) float64 {
	switch profile {
	case caseStrongPerformer:
		return 0.8 + randomFloat()*0.2
	case caseSolidPerformer:
		return 0.6 + randomFloat()*0.2
	case caseWeakPerformer:
		return randomFloat() * 0.4
	default:
		return randomFloat()
	}
}

// Generate produces a synthetic dataset in the export JSON format.
func Generate(cfg GenConfig) ([]byte, error) {
	ds := genDataset{}

	for pi := 0; pi < cfg.Programs; pi++ {
		program := genProgram{
			ID:   uuid.New().String(),
			Code: fmt.Sprintf("PRG%d", pi+1),
			Name: fmt.Sprintf("Program %d", pi+1),
		}
		for oi := 0; oi < cfg.POsPerProgram; oi++ {
			po := genProgramOutcome{
				ID:          uuid.New().String(),
				Code:        fmt.Sprintf("PO%d", oi+1),
				Description: fmt.Sprintf("Program outcome %d", oi+1),
			}
			// Leave some POs without a survey value to exercise the
			// blender's configured default.
			if oi%2 == 0 {
				v := 1.5 + randomFloat()*1.5
				po.Indirect = &v
			}
			program.Outcomes = append(program.Outcomes, po)
		}
		ds.Programs = append(ds.Programs, program)

		for ci := 0; ci < cfg.CoursesPerProgram; ci++ {
			course := genCourse{
				ID:     uuid.New().String(),
				Code:   fmt.Sprintf("C%d%02d", pi+1, ci+1),
				Title:  fmt.Sprintf("Course %d-%d", pi+1, ci+1),
				Target: 60,
				Levels: [3]float64{40, 60, 80},
			}
			section := genSection{ID: uuid.New().String(), Name: course.Code + "-A"}
			course.Sections = append(course.Sections, section)

			assessment := genAssessment{ID: uuid.New().String(), Name: course.Code + " final"}
			for coi := 0; coi < cfg.COsPerCourse; coi++ {
				co := genOutcome{
					ID:          uuid.New().String(),
					Code:        fmt.Sprintf("%s.CO%d", course.Code, coi+1),
					Description: fmt.Sprintf("Outcome %d of %s", coi+1, course.Code),
				}
				course.Outcomes = append(course.Outcomes, co)
				for qi := 0; qi < cfg.QuestionsPerCO; qi++ {
					assessment.Questions = append(assessment.Questions, genQuestion{
						ID:       uuid.New().String(),
						CO:       co.ID,
						MaxMarks: defaultMaxMarks,
					})
				}
				// Correlate each CO with one PO at a random strength.
				po := program.Outcomes[(ci*cfg.COsPerCourse+coi)%len(program.Outcomes)]
				ds.Mappings = append(ds.Mappings, genMapping{CO: co.ID, PO: po.ID, Level: 1 + randomInt(3)})
			}
			course.Assessments = append(course.Assessments, assessment)
			ds.Courses = append(ds.Courses, course)

			for si := 0; si < cfg.StudentsPerCourse; si++ {
				student := genStudent{
					ID:      uuid.New().String(),
					Name:    fmt.Sprintf("Student %s-%d", course.Code, si+1),
					Section: section.ID,
					Active:  true,
				}
				ds.Students = append(ds.Students, student)
				ds.Enrollments = append(ds.Enrollments, genEnrollment{Student: student.ID, Course: course.ID, Active: true})

				profile := si % performerCases
				for _, q := range assessment.Questions {
					score := scoreFraction(profile) * q.MaxMarks
					ds.Marks = append(ds.Marks, genMark{Student: student.ID, Question: q.ID, Score: score})
				}
			}
		}
	}

	out, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal dataset: %w", err)
	}
	return out, nil
}
