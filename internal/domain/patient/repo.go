package patient

import "context"

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	PatientExists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)

	// Concomitant exposure
	ReplaceConcomitants(ctx context.Context, patientID int64, rows []*ConcomitantDrug) (inserted, deleted int, err error)
	ListConcomitants(ctx context.Context, patientID int64) ([]*ConcomitantDetail, error)
	ConcomitantDrugIDs(ctx context.Context, patientID int64) ([]int64, error)
}
