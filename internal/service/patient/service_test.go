package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	"github.com/jwalitptl/ward-api/internal/service/activity"
	templatesvc "github.com/jwalitptl/ward-api/internal/service/template"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NewNotFound("patient", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) List(_ context.Context) ([]*model.Patient, error) {
	out := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type fakeRoomRepo struct {
	rooms map[uuid.UUID]*model.LaborRoom
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[uuid.UUID]*model.LaborRoom)}
}

func (r *fakeRoomRepo) Create(_ context.Context, room *model.LaborRoom) error {
	cp := *room
	r.rooms[room.ID] = &cp
	return nil
}

func (r *fakeRoomRepo) Get(_ context.Context, id uuid.UUID) (*model.LaborRoom, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, apperrors.NewNotFound("labor room", nil)
	}
	cp := *room
	return &cp, nil
}

func (r *fakeRoomRepo) GetByPatient(_ context.Context, patientID uuid.UUID) (*model.LaborRoom, error) {
	for _, room := range r.rooms {
		if room.CurrentPatientID != nil && *room.CurrentPatientID == patientID {
			cp := *room
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("labor room", nil)
}

func (r *fakeRoomRepo) Update(_ context.Context, room *model.LaborRoom) error {
	cp := *room
	r.rooms[room.ID] = &cp
	return nil
}

func (r *fakeRoomRepo) List(_ context.Context) ([]*model.LaborRoom, error) {
	out := make([]*model.LaborRoom, 0, len(r.rooms))
	for _, room := range r.rooms {
		cp := *room
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRoomRepo) Occupy(_ context.Context, roomID, patientID, nurseID uuid.UUID) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return apperrors.NewNotFound("labor room", nil)
	}
	if room.IsOccupied {
		return apperrors.NewRoomUnavailable(room.Name)
	}
	room.IsOccupied = true
	room.CurrentPatientID = &patientID
	room.AssignedNurseID = &nurseID
	return nil
}

func (r *fakeRoomRepo) ReleaseByPatient(_ context.Context, patientID uuid.UUID) error {
	for _, room := range r.rooms {
		if room.CurrentPatientID != nil && *room.CurrentPatientID == patientID {
			room.IsOccupied = false
			room.CurrentPatientID = nil
			room.AssignedNurseID = nil
		}
	}
	return nil
}

// fakeWardStore mirrors the transactional store against the in-memory
// repos: the patient row, the room row and the outbox event move
// together or not at all. outboxErr simulates a failed event insert,
// which must abort the whole write.
type fakeWardStore struct {
	patients  *fakePatientRepo
	rooms     *fakeRoomRepo
	events    []*model.OutboxEvent
	outboxErr error
}

func (w *fakeWardStore) RegisterPatient(_ context.Context, patient *model.Patient, event *model.OutboxEvent) error {
	if w.outboxErr != nil {
		return w.outboxErr
	}
	cp := *patient
	w.patients.patients[patient.ID] = &cp
	w.events = append(w.events, event)
	return nil
}

func (w *fakeWardStore) AcceptPatientIntoRoom(ctx context.Context, patientID, roomID, nurseID uuid.UUID, event *model.OutboxEvent) error {
	if w.outboxErr != nil {
		return w.outboxErr
	}
	p, ok := w.patients.patients[patientID]
	if !ok {
		return apperrors.NewNotFound("patient", nil)
	}
	if p.Status != model.PatientStatusRegistered {
		return apperrors.NewInvalidTransition("patient is not awaiting labor")
	}
	if err := w.rooms.Occupy(ctx, roomID, patientID, nurseID); err != nil {
		return err
	}
	p.Status = model.PatientStatusInLabor
	p.LaborRoomID = &roomID
	p.AssignedNurseID = &nurseID
	w.events = append(w.events, event)
	return nil
}

func (w *fakeWardStore) CompleteDelivery(ctx context.Context, patient *model.Patient, event *model.OutboxEvent) error {
	if w.outboxErr != nil {
		return w.outboxErr
	}
	p, ok := w.patients.patients[patient.ID]
	if !ok {
		return apperrors.NewNotFound("patient", nil)
	}
	if p.Status != model.PatientStatusInLabor {
		return apperrors.NewInvalidTransition("patient is not in labor")
	}
	p.Status = model.PatientStatusDelivered
	p.DeliveredAt = patient.DeliveredAt
	p.BabyGender = patient.BabyGender
	p.DeliveryNotes = patient.DeliveryNotes
	p.AssignedNurseID = nil
	p.LaborRoomID = nil
	if err := w.rooms.ReleaseByPatient(ctx, patient.ID); err != nil {
		return err
	}
	w.events = append(w.events, event)
	return nil
}

type fakeTemplateRepo struct {
	templates map[uuid.UUID]*model.MessageTemplate
}

func (r *fakeTemplateRepo) Create(_ context.Context, t *model.MessageTemplate) error {
	r.templates[t.ID] = t
	return nil
}

func (r *fakeTemplateRepo) Get(_ context.Context, id uuid.UUID) (*model.MessageTemplate, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, apperrors.NewTemplateNotFound(nil)
	}
	return t, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, t *model.MessageTemplate) error {
	r.templates[t.ID] = t
	return nil
}

func (r *fakeTemplateRepo) List(_ context.Context) ([]*model.MessageTemplate, error) {
	out := make([]*model.MessageTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	return out, nil
}

type fakeActivityRepo struct {
	entries []*model.ActivityLog
}

func (r *fakeActivityRepo) Create(_ context.Context, e *model.ActivityLog) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeActivityRepo) List(_ context.Context, limit int) ([]*model.ActivityLog, error) {
	if limit > len(r.entries) {
		limit = len(r.entries)
	}
	return r.entries[:limit], nil
}

func (r *fakeActivityRepo) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, phone, message string, _ uuid.UUID) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, phone+": "+message)
	return nil
}

type fixture struct {
	svc       *Service
	patients  *fakePatientRepo
	rooms     *fakeRoomRepo
	ward      *fakeWardStore
	templates *fakeTemplateRepo
	activity  *fakeActivityRepo
	notifier  *fakeNotifier
}

func newFixture() *fixture {
	patients := newFakePatientRepo()
	rooms := newFakeRoomRepo()
	templates := &fakeTemplateRepo{templates: make(map[uuid.UUID]*model.MessageTemplate)}
	activityRepo := &fakeActivityRepo{}
	notifier := &fakeNotifier{}

	recorder := activity.NewService(activityRepo)
	templateSvc := templatesvc.NewService(templates, recorder)
	ward := &fakeWardStore{patients: patients, rooms: rooms}

	var _ repository.WardStore = ward

	svc := NewService(patients, rooms, ward, templateSvc, notifier, recorder)
	return &fixture{
		svc:       svc,
		patients:  patients,
		rooms:     rooms,
		ward:      ward,
		templates: templates,
		activity:  activityRepo,
		notifier:  notifier,
	}
}

func (f *fixture) addRegisteredPatient() *model.Patient {
	p := &model.Patient{
		ID:             uuid.New(),
		FullName:       "Jane Doe",
		NextOfKinName:  "John Doe",
		NextOfKinPhone: "+254712345678",
		Status:         model.PatientStatusRegistered,
		RegisteredBy:   uuid.New(),
		RegisteredAt:   time.Now(),
	}
	f.patients.patients[p.ID] = p
	return p
}

func (f *fixture) addRoom(name string) *model.LaborRoom {
	room := &model.LaborRoom{
		Base: model.Base{ID: uuid.New()},
		Name: name,
	}
	f.rooms.rooms[room.ID] = room
	return room
}

func (f *fixture) addTemplate(content string) *model.MessageTemplate {
	tpl := &model.MessageTemplate{
		Base:     model.Base{ID: uuid.New()},
		Name:     "Delivery",
		Content:  content,
		IsActive: true,
	}
	f.templates.templates[tpl.ID] = tpl
	return tpl
}

func testActor() model.Actor {
	return model.Actor{ID: uuid.New(), Name: "Nurse Amy", Role: model.RoleLaborNurse}
}

func TestRegisterPatient(t *testing.T) {
	f := newFixture()

	created, err := f.svc.Register(context.Background(), &model.RegisterPatientRequest{
		FullName:       "Jane Doe",
		NextOfKinName:  "John Doe",
		NextOfKinPhone: "+254712345678",
	}, testActor())
	require.NoError(t, err)

	assert.Equal(t, model.PatientStatusRegistered, created.Status)
	assert.Nil(t, created.AssignedNurseID)
	assert.Nil(t, created.LaborRoomID)

	require.Len(t, f.activity.entries, 1)
	assert.Equal(t, model.ActivityPatientRegistered, f.activity.entries[0].Action)

	require.Len(t, f.ward.events, 1)
	assert.Equal(t, model.EventPatientRegistered, f.ward.events[0].EventType)
}

func TestRegisterPatientValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Register(context.Background(), &model.RegisterPatientRequest{
		FullName:      "Jane Doe",
		NextOfKinName: "John Doe",
	}, testActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))
	assert.Empty(t, f.ward.events)
}

func TestRegisterPatientOutboxFailureSurfaces(t *testing.T) {
	f := newFixture()
	f.ward.outboxErr = apperrors.NewStore("create outbox event", assert.AnError)

	_, err := f.svc.Register(context.Background(), &model.RegisterPatientRequest{
		FullName:       "Jane Doe",
		NextOfKinName:  "John Doe",
		NextOfKinPhone: "+254712345678",
	}, testActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrStore, apperrors.CodeOf(err))

	// The failed commit leaves no patient, no event and no activity.
	assert.Empty(t, f.patients.patients)
	assert.Empty(t, f.ward.events)
	assert.Empty(t, f.activity.entries)
}

func TestAcceptPatient(t *testing.T) {
	f := newFixture()
	p := f.addRegisteredPatient()
	room := f.addRoom("Labor Room 1")
	actor := testActor()

	updated, err := f.svc.Accept(context.Background(), p.ID, room.ID, actor)
	require.NoError(t, err)

	assert.Equal(t, model.PatientStatusInLabor, updated.Status)
	require.NotNil(t, updated.LaborRoomID)
	assert.Equal(t, room.ID, *updated.LaborRoomID)
	require.NotNil(t, updated.AssignedNurseID)
	assert.Equal(t, actor.ID, *updated.AssignedNurseID)

	stored := f.rooms.rooms[room.ID]
	assert.True(t, stored.IsOccupied)
	require.NotNil(t, stored.CurrentPatientID)
	assert.Equal(t, p.ID, *stored.CurrentPatientID)

	require.Len(t, f.ward.events, 1)
	assert.Equal(t, model.EventPatientAccepted, f.ward.events[0].EventType)
}

func TestAcceptPatientIntoOccupiedRoom(t *testing.T) {
	f := newFixture()
	p := f.addRegisteredPatient()
	room := f.addRoom("Labor Room 1")
	other := uuid.New()
	f.rooms.rooms[room.ID].IsOccupied = true
	f.rooms.rooms[room.ID].CurrentPatientID = &other

	_, err := f.svc.Accept(context.Background(), p.ID, room.ID, testActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrRoomUnavailable, apperrors.CodeOf(err))

	// Patient row stays untouched.
	stored := f.patients.patients[p.ID]
	assert.Equal(t, model.PatientStatusRegistered, stored.Status)
	assert.Nil(t, stored.LaborRoomID)
	assert.Empty(t, f.ward.events)
}

func TestAcceptPatientNotRegistered(t *testing.T) {
	f := newFixture()
	p := f.addRegisteredPatient()
	f.patients.patients[p.ID].Status = model.PatientStatusDelivered
	room := f.addRoom("Labor Room 1")

	_, err := f.svc.Accept(context.Background(), p.ID, room.ID, testActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.CodeOf(err))
}

func acceptFixture(t *testing.T) (*fixture, *model.Patient, *model.LaborRoom) {
	t.Helper()
	f := newFixture()
	p := f.addRegisteredPatient()
	room := f.addRoom("Labor Room 1")
	_, err := f.svc.Accept(context.Background(), p.ID, room.ID, testActor())
	require.NoError(t, err)
	f.ward.events = nil
	f.activity.entries = nil
	return f, p, room
}

func TestCompleteDelivery(t *testing.T) {
	f, p, room := acceptFixture(t)
	tpl := f.addTemplate("Hello {{nextOfKinName}}, {{patientName}} delivered a {{babyGender}} baby at {{deliveryTime}}.")

	updated, err := f.svc.CompleteDelivery(context.Background(), p.ID, &model.CompleteDeliveryRequest{
		BabyGender:    "female",
		DeliveryNotes: "No complications",
		TemplateID:    tpl.ID.String(),
	}, testActor())
	require.NoError(t, err)

	assert.Equal(t, model.PatientStatusDelivered, updated.Status)
	require.NotNil(t, updated.BabyGender)
	assert.Equal(t, model.BabyGenderFemale, *updated.BabyGender)
	assert.NotNil(t, updated.DeliveredAt)
	assert.Nil(t, updated.AssignedNurseID)
	assert.Nil(t, updated.LaborRoomID)

	stored := f.rooms.rooms[room.ID]
	assert.False(t, stored.IsOccupied)
	assert.Nil(t, stored.CurrentPatientID)

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0], "+254712345678: Hello John Doe, Jane Doe delivered a female baby at ")

	require.Len(t, f.ward.events, 1)
	assert.Equal(t, model.EventDeliveryCompleted, f.ward.events[0].EventType)
}

func TestCompleteDeliveryMissingTemplateLeavesStateUntouched(t *testing.T) {
	f, p, room := acceptFixture(t)

	_, err := f.svc.CompleteDelivery(context.Background(), p.ID, &model.CompleteDeliveryRequest{
		BabyGender: "male",
		TemplateID: uuid.NewString(),
	}, testActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTemplateNotFound, apperrors.CodeOf(err))

	stored := f.patients.patients[p.ID]
	assert.Equal(t, model.PatientStatusInLabor, stored.Status)
	assert.True(t, f.rooms.rooms[room.ID].IsOccupied)
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.ward.events)
}

func TestCompleteDeliveryInactiveTemplate(t *testing.T) {
	f, p, _ := acceptFixture(t)
	tpl := f.addTemplate("Hi {{nextOfKinName}}")
	tpl.IsActive = false

	_, err := f.svc.CompleteDelivery(context.Background(), p.ID, &model.CompleteDeliveryRequest{
		BabyGender: "male",
		TemplateID: tpl.ID.String(),
	}, testActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTemplateNotFound, apperrors.CodeOf(err))
	assert.Empty(t, f.notifier.sent)
}

func TestCompleteDeliveryNotificationFailureAborts(t *testing.T) {
	f, p, room := acceptFixture(t)
	tpl := f.addTemplate("Hi {{nextOfKinName}}")
	f.notifier.err = assert.AnError

	_, err := f.svc.CompleteDelivery(context.Background(), p.ID, &model.CompleteDeliveryRequest{
		BabyGender: "male",
		TemplateID: tpl.ID.String(),
	}, testActor())
	require.Error(t, err)

	stored := f.patients.patients[p.ID]
	assert.Equal(t, model.PatientStatusInLabor, stored.Status)
	assert.True(t, f.rooms.rooms[room.ID].IsOccupied)
	assert.Empty(t, f.ward.events)
}

func TestCompleteDeliveryOutboxFailureLeavesStateUntouched(t *testing.T) {
	f, p, room := acceptFixture(t)
	tpl := f.addTemplate("Hi {{nextOfKinName}}")
	f.ward.outboxErr = apperrors.NewStore("create outbox event", assert.AnError)

	_, err := f.svc.CompleteDelivery(context.Background(), p.ID, &model.CompleteDeliveryRequest{
		BabyGender: "male",
		TemplateID: tpl.ID.String(),
	}, testActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrStore, apperrors.CodeOf(err))

	stored := f.patients.patients[p.ID]
	assert.Equal(t, model.PatientStatusInLabor, stored.Status)
	assert.True(t, f.rooms.rooms[room.ID].IsOccupied)
	assert.Empty(t, f.ward.events)
	assert.Empty(t, f.activity.entries)
}

func TestCompleteDeliveryNotInLabor(t *testing.T) {
	f := newFixture()
	p := f.addRegisteredPatient()
	tpl := f.addTemplate("Hi")

	_, err := f.svc.CompleteDelivery(context.Background(), p.ID, &model.CompleteDeliveryRequest{
		BabyGender: "male",
		TemplateID: tpl.ID.String(),
	}, testActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.CodeOf(err))
}
