package console

import (
	"fmt"

	"patient-records/internal/model"
)

const (
	patientRule = "+-----+------------------------------+-----------------+"
	examRule    = "+-----+------------------------------+---------------------+------------+"
)

func (a *App) printPatientTable(patients []model.Patient) {
	fmt.Fprintln(a.out, patientRule)
	fmt.Fprintln(a.out, "| ID  | Name                         | National ID     |")
	fmt.Fprintln(a.out, patientRule)
	for _, p := range patients {
		fmt.Fprintf(a.out, "| %-3d | %-28s | %-15s |\n", p.ID, p.Name, p.NationalID)
	}
	fmt.Fprintln(a.out, patientRule)
}

func (a *App) printExamTable(exams []model.Exam) {
	fmt.Fprintln(a.out, examRule)
	fmt.Fprintln(a.out, "| ID  | Description                  | Date                | Patient ID |")
	fmt.Fprintln(a.out, examRule)
	for _, e := range exams {
		fmt.Fprintf(a.out, "| %-3d | %-28s | %-19s | %-10d |\n",
			e.ID, e.Description, e.TakenAt.Format(timeFormat), e.PatientID)
	}
	fmt.Fprintln(a.out, examRule)
}
