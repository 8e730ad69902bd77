package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
)

const collectionAppointments = "appointments"

// AppointmentRepository implements ports.AppointmentRepository.
type AppointmentRepository struct {
	col *mongo.Collection
}

func NewAppointmentRepository(db *mongo.Database) *AppointmentRepository {
	return &AppointmentRepository{col: db.Collection(collectionAppointments)}
}

type statusChange struct {
	Status    string    `bson:"status"`
	ChangedAt time.Time `bson:"changedAt"`
}

type mongoAppointment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	FirstName       string             `bson:"firstName"`
	LastName        string             `bson:"lastName"`
	Email           string             `bson:"email"`
	Phone           string             `bson:"phone"`
	NIC             string             `bson:"nic"`
	DOB             time.Time          `bson:"dob"`
	Gender          string             `bson:"gender"`
	AppointmentDate string             `bson:"appointment_date"`
	Department      string             `bson:"department"`
	Doctor          domain.DoctorRef   `bson:"doctor"`
	HasVisited      bool               `bson:"hasVisited"`
	Address         string             `bson:"address"`
	DoctorID        primitive.ObjectID `bson:"doctorId"`
	PatientID       primitive.ObjectID `bson:"patientId"`
	Status          string             `bson:"status"`
	StatusHistory   []statusChange     `bson:"statusHistory,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

func (m mongoAppointment) toDomain() *domain.Appointment {
	return &domain.Appointment{
		ID:              m.ID.Hex(),
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		Email:           m.Email,
		Phone:           m.Phone,
		NIC:             m.NIC,
		DOB:             m.DOB.UTC(),
		Gender:          m.Gender,
		AppointmentDate: m.AppointmentDate,
		Department:      m.Department,
		Doctor:          m.Doctor,
		HasVisited:      m.HasVisited,
		Address:         m.Address,
		DoctorID:        m.DoctorID.Hex(),
		PatientID:       m.PatientID.Hex(),
		Status:          domain.AppointmentStatus(m.Status),
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

// Create inserts the appointment. Doctor and patient ids must be valid
// object ids since they reference documents in the users collection.
func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	doctorID, err := primitive.ObjectIDFromHex(a.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor id %q: %w", a.DoctorID, err)
	}
	patientID, err := primitive.ObjectIDFromHex(a.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient id %q: %w", a.PatientID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAppointment{
		ID:              primitive.NewObjectID(),
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		Email:           a.Email,
		Phone:           a.Phone,
		NIC:             a.NIC,
		DOB:             a.DOB.UTC(),
		Gender:          a.Gender,
		AppointmentDate: a.AppointmentDate,
		Department:      a.Department,
		Doctor:          a.Doctor,
		HasVisited:      a.HasVisited,
		Address:         a.Address,
		DoctorID:        doctorID,
		PatientID:       patientID,
		Status:          string(a.Status),
		StatusHistory:   []statusChange{{Status: string(a.Status), ChangedAt: a.CreatedAt.UTC()}},
		CreatedAt:       a.CreatedAt.UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAppointmentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAppointment
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns appointments newest first. An empty patientID lists all of them.
func (r *AppointmentRepository) List(ctx context.Context, patientID string) ([]*domain.Appointment, error) {
	filter := bson.M{}
	if patientID != "" {
		oid, err := primitive.ObjectIDFromHex(patientID)
		if err != nil {
			return []*domain.Appointment{}, nil
		}
		filter["patientId"] = oid
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	var docs []mongoAppointment
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}

	out := make([]*domain.Appointment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Update sets the given fields atomically and records status changes in the
// document's history. It returns the document as stored after the update.
func (r *AppointmentRepository) Update(ctx context.Context, id string, upd ports.AppointmentUpdate) (*domain.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAppointmentNotFound
	}

	set := bson.M{}
	update := bson.M{"$set": set}
	if upd.Status != nil {
		set["status"] = string(*upd.Status)
		update["$push"] = bson.M{"statusHistory": statusChange{
			Status:    string(*upd.Status),
			ChangedAt: time.Now().UTC(),
		}}
	}
	if upd.HasVisited != nil {
		set["hasVisited"] = *upd.HasVisited
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAppointment
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAppointmentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

// EnsureIndexes creates the lookup indexes on the appointments collection.
func (r *AppointmentRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "doctorId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
