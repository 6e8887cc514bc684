// Package console implements the interactive menu over the patient and
// exam stores. It talks to the stores through small accessor interfaces
// so the loop can run against fakes in tests.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"patient-records/internal/model"
)

const timeFormat = "2006-01-02 15:04"

type PatientAccessor interface {
	Create(ctx context.Context, p *model.Patient)
	FindByID(ctx context.Context, id int64) *model.Patient
	FindAll(ctx context.Context) []model.Patient
	Update(ctx context.Context, p *model.Patient)
	Delete(ctx context.Context, p *model.Patient)
}

type ExamAccessor interface {
	Create(ctx context.Context, e *model.Exam)
	FindByID(ctx context.Context, id int64) *model.Exam
	FindAll(ctx context.Context) []model.Exam
	Update(ctx context.Context, e *model.Exam)
	Delete(ctx context.Context, e *model.Exam)
}

// App is the blocking read-evaluate-print loop. One operation at a time;
// every handler returns to the menu whatever the outcome.
type App struct {
	patients PatientAccessor
	exams    ExamAccessor
	in       *bufio.Scanner
	out      io.Writer
}

func New(patients PatientAccessor, exams ExamAccessor, in io.Reader, out io.Writer) *App {
	return &App{
		patients: patients,
		exams:    exams,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run dispatches menu selections until the user picks 0 or input ends.
func (a *App) Run(ctx context.Context) {
	for {
		a.printMenu()
		choice, ok := a.readInt("\nSelect an option: ")
		if !ok {
			return
		}
		fmt.Fprintln(a.out)

		switch choice {
		case 1:
			a.createPatient(ctx)
		case 2:
			a.listPatients(ctx)
		case 3:
			a.findPatient(ctx)
		case 4:
			a.updatePatient(ctx)
		case 5:
			a.deletePatient(ctx)
		case 6:
			a.createExam(ctx)
		case 7:
			a.listExams(ctx)
		case 8:
			a.findExam(ctx)
		case 9:
			a.updateExam(ctx)
		case 10:
			a.deleteExam(ctx)
		case 11:
			a.examsByPatient(ctx)
		case 12:
			a.patientsWithExams(ctx)
		case 0:
			fmt.Fprintln(a.out, "Shutting down. Goodbye!")
			return
		default:
			fmt.Fprintln(a.out, "Invalid option, try again.")
		}
	}
}

func (a *App) printMenu() {
	fmt.Fprintln(a.out, "\n==================================================")
	fmt.Fprintln(a.out, "               PATIENT RECORD MANAGER              ")
	fmt.Fprintln(a.out, "==================================================")
	fmt.Fprintln(a.out, "1  | Register patient")
	fmt.Fprintln(a.out, "2  | List patients")
	fmt.Fprintln(a.out, "3  | Find patient by id")
	fmt.Fprintln(a.out, "4  | Edit patient")
	fmt.Fprintln(a.out, "5  | Remove patient")
	fmt.Fprintln(a.out, "--------------------------------------------------")
	fmt.Fprintln(a.out, "6  | Register exam")
	fmt.Fprintln(a.out, "7  | List exams")
	fmt.Fprintln(a.out, "8  | Find exam by id")
	fmt.Fprintln(a.out, "9  | Edit exam")
	fmt.Fprintln(a.out, "10 | Remove exam")
	fmt.Fprintln(a.out, "--------------------------------------------------")
	fmt.Fprintln(a.out, "11 | Exams for a patient")
	fmt.Fprintln(a.out, "12 | Patients with their exams")
	fmt.Fprintln(a.out, "0  | Exit")
}

// prompt prints the label and reads one trimmed line. ok is false when
// input is exhausted.
func (a *App) prompt(label string) (string, bool) {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// readInt re-prompts on anything that does not parse as an integer.
func (a *App) readInt(label string) (int64, bool) {
	for {
		s, ok := a.prompt(label)
		if !ok {
			return 0, false
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			fmt.Fprintln(a.out, "Please enter a whole number.")
			continue
		}
		return n, true
	}
}

func (a *App) createPatient(ctx context.Context) {
	fmt.Fprintln(a.out, "===== Register Patient =====")
	name, ok := a.prompt("Name: ")
	if !ok {
		return
	}
	nationalID, ok := a.prompt("National ID: ")
	if !ok {
		return
	}

	p := &model.Patient{Name: name, NationalID: nationalID}
	a.patients.Create(ctx, p)
	if p.ID == 0 {
		fmt.Fprintln(a.out, "\nPatient was not registered.")
		return
	}
	fmt.Fprintf(a.out, "\nPatient registered with id %d.\n", p.ID)
}

func (a *App) listPatients(ctx context.Context) {
	patients := a.patients.FindAll(ctx)
	if len(patients) == 0 {
		fmt.Fprintln(a.out, "No patients found.")
		return
	}
	fmt.Fprintln(a.out, "===== Patients =====")
	a.printPatientTable(patients)
}

func (a *App) findPatient(ctx context.Context) {
	id, ok := a.readInt("Patient id: ")
	if !ok {
		return
	}
	p := a.patients.FindByID(ctx, id)
	if p == nil {
		fmt.Fprintln(a.out, "Patient not found.")
		return
	}
	fmt.Fprintln(a.out, "===== Patient =====")
	a.printPatientTable([]model.Patient{*p})
}

func (a *App) updatePatient(ctx context.Context) {
	id, ok := a.readInt("Id of the patient to edit: ")
	if !ok {
		return
	}
	p := a.patients.FindByID(ctx, id)
	if p == nil {
		fmt.Fprintln(a.out, "Patient not found.")
		return
	}

	name, ok := a.prompt("New name (blank keeps current): ")
	if !ok {
		return
	}
	if name != "" {
		p.Name = name
	}
	nationalID, ok := a.prompt("New national ID (blank keeps current): ")
	if !ok {
		return
	}
	if nationalID != "" {
		p.NationalID = nationalID
	}

	a.patients.Update(ctx, p)
	fmt.Fprintln(a.out, "\nPatient updated.")
}

func (a *App) deletePatient(ctx context.Context) {
	id, ok := a.readInt("Id of the patient to remove: ")
	if !ok {
		return
	}
	p := a.patients.FindByID(ctx, id)
	if p == nil {
		fmt.Fprintln(a.out, "Patient not found.")
		return
	}
	a.patients.Delete(ctx, p)
	fmt.Fprintln(a.out, "Patient removed.")
}

func (a *App) createExam(ctx context.Context) {
	fmt.Fprintln(a.out, "===== Register Exam =====")
	description, ok := a.prompt("Description: ")
	if !ok {
		return
	}
	patientID, ok := a.readInt("Patient id: ")
	if !ok {
		return
	}

	e := &model.Exam{Description: description, PatientID: patientID}
	a.exams.Create(ctx, e)
	if e.ID == 0 {
		fmt.Fprintln(a.out, "\nExam was not registered.")
		return
	}
	fmt.Fprintf(a.out, "\nExam registered with id %d.\n", e.ID)
	fmt.Fprintf(a.out, "Exam date recorded as %s.\n", e.TakenAt.Format(timeFormat))
}

func (a *App) listExams(ctx context.Context) {
	exams := a.exams.FindAll(ctx)
	if len(exams) == 0 {
		fmt.Fprintln(a.out, "No exams found.")
		return
	}
	fmt.Fprintln(a.out, "===== Exams =====")
	a.printExamTable(exams)
}

func (a *App) findExam(ctx context.Context) {
	id, ok := a.readInt("Exam id: ")
	if !ok {
		return
	}
	e := a.exams.FindByID(ctx, id)
	if e == nil {
		fmt.Fprintln(a.out, "Exam not found.")
		return
	}
	fmt.Fprintln(a.out, "===== Exam =====")
	a.printExamTable([]model.Exam{*e})
}

func (a *App) updateExam(ctx context.Context) {
	id, ok := a.readInt("Id of the exam to edit: ")
	if !ok {
		return
	}
	e := a.exams.FindByID(ctx, id)
	if e == nil {
		fmt.Fprintln(a.out, "Exam not found.")
		return
	}

	description, ok := a.prompt("New description (blank keeps current): ")
	if !ok {
		return
	}
	if description != "" {
		e.Description = description
	}

	a.exams.Update(ctx, e)
	fmt.Fprintln(a.out, "\nExam updated.")
	fmt.Fprintf(a.out, "Exam date moved to %s.\n", e.TakenAt.Format(timeFormat))
}

func (a *App) deleteExam(ctx context.Context) {
	id, ok := a.readInt("Id of the exam to remove: ")
	if !ok {
		return
	}
	e := a.exams.FindByID(ctx, id)
	if e == nil {
		fmt.Fprintln(a.out, "Exam not found.")
		return
	}
	a.exams.Delete(ctx, e)
	fmt.Fprintln(a.out, "Exam removed.")
}

// examsByPatient lists a single patient's exams. The store has no
// patient-scoped query, so this filters a full scan.
func (a *App) examsByPatient(ctx context.Context) {
	patientID, ok := a.readInt("Patient id: ")
	if !ok {
		return
	}

	var matched []model.Exam
	for _, e := range a.exams.FindAll(ctx) {
		if e.PatientID == patientID {
			matched = append(matched, e)
		}
	}

	fmt.Fprintf(a.out, "===== Exams for patient %d =====\n", patientID)
	if len(matched) == 0 {
		fmt.Fprintln(a.out, "No exams found for this patient.")
		return
	}
	a.printExamTable(matched)
}

func (a *App) patientsWithExams(ctx context.Context) {
	patients := a.patients.FindAll(ctx)
	if len(patients) == 0 {
		fmt.Fprintln(a.out, "No patients found.")
		return
	}

	byPatient := make(map[int64][]model.Exam)
	for _, e := range a.exams.FindAll(ctx) {
		byPatient[e.PatientID] = append(byPatient[e.PatientID], e)
	}

	fmt.Fprintln(a.out, "===== Patients and their exams =====")
	for _, p := range patients {
		fmt.Fprintf(a.out, "\n[%d] %s (%s)\n", p.ID, p.Name, p.NationalID)
		exams := byPatient[p.ID]
		if len(exams) == 0 {
			fmt.Fprintln(a.out, "    no exams on record")
			continue
		}
		for _, e := range exams {
			fmt.Fprintf(a.out, "    - [%d] %s (%s)\n",
				e.ID, e.Description, e.TakenAt.Format(timeFormat))
		}
	}
}
