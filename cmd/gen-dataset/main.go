package main

import (
	"flag"
	"os"

	"github.com/acadmetrics/attain/internal/adapters/dataset"
)

// Default generation size constants.
const (
	defaultPrograms = 1
	defaultCourses  = 4
	defaultStudents = 40
	filePermission  = 0600
)

func main() {
	var (
		programs = flag.Int("programs", defaultPrograms, "Number of programs to generate")
		courses  = flag.Int("courses", defaultCourses, "Number of courses per program")
		students = flag.Int("students", defaultStudents, "Number of students per course")
		output   = flag.String("output", "", "Output file (default: stdout)")
	)
	flag.Parse()

	cfg := dataset.DefaultGenConfig()
	cfg.Programs = *programs
	cfg.CoursesPerProgram = *courses
	cfg.StudentsPerCourse = *students

	data, err := dataset.Generate(cfg)
	if err != nil {
		os.Stderr.WriteString("failed to generate dataset: " + err.Error() + "\n")
		os.Exit(1)
	}

	if *output == "" {
		_, _ = os.Stdout.Write(data)
		_, _ = os.Stdout.WriteString("\n")
		return
	}
	if err := os.WriteFile(*output, data, filePermission); err != nil {
		os.Stderr.WriteString("failed to write dataset: " + err.Error() + "\n")
		os.Exit(1)
	}
}
