package service

import (
	"context"
	"errors"
	"hackboard/internal/common"
	"hackboard/internal/domain/lifecycle"
	"hackboard/internal/domain/model"
	"testing"
	"time"
)

const (
	hackathonID = "7f1c3d2e-9a4b-4c5d-8e6f-0a1b2c3d4e5f"
	organizerID = "org-1"
)

var (
	organizer  = model.Caller{UserID: organizerID, Email: "org@example.com", Role: model.RoleIndustry}
	applicantX = model.Caller{UserID: "user-x", Email: "x@example.com", Role: model.RoleApplicant}
	applicantY = model.Caller{UserID: "user-y", Email: "y@example.com", Role: model.RoleApplicant}
)

func oneRoundHackathon() model.Hackathon {
	return model.Hackathon{
		ID:              hackathonID,
		Slug:            "spring-hack",
		Title:           "Spring Hack",
		OrganizerID:     organizerID,
		AllowIndividual: true,
		MinTeamSize:     2,
		TeamSize:        4,
		Phases:          []model.Phase{{ID: "p1", Name: "Final", Deadline: fixedNow.Add(time.Hour)}},
		StartDate:       fixedNow.Add(-time.Hour),
		EndDate:         fixedNow.Add(24 * time.Hour),
	}
}

type fixture struct {
	hackathons *fakeHackathonRepo
	apps       *fakeApplicationRepo
	locker     *fakeLocker
	notifier   *recordingNotifier
	appSvc     *ApplicationService
	reviewSvc  *ReviewService
	hackSvc    *HackathonService
	rankSvc    *RankingService
}

func newFixture(hs ...model.Hackathon) *fixture {
	f := &fixture{
		hackathons: newFakeHackathonRepo(hs...),
		apps:       newFakeApplicationRepo(),
		locker:     newFakeLocker(),
		notifier:   &recordingNotifier{},
	}
	f.appSvc = NewApplicationService(f.apps, f.hackathons, f.locker, f.notifier, fixedClock)
	f.reviewSvc = NewReviewService(f.apps, f.hackathons, f.locker, f.notifier, fixedClock)
	f.hackSvc = NewHackathonService(f.hackathons, f.apps, fixedClock)
	f.rankSvc = NewRankingService(f.apps, f.hackathons, f.locker, fixedClock)
	return f
}

func assertCode(t *testing.T, err error, want common.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("err = nil, want %s", want)
	}
	if got := common.CodeFromError(err); got != want {
		t.Fatalf("code = %s, want %s (err: %v)", got, want, err)
	}
}

func submit(text string) lifecycle.SubmissionRequest {
	return lifecycle.SubmissionRequest{SubmissionContent: model.SubmissionContent{SolutionStatement: text}}
}

func TestScenario_RejectedPhaseEndsApplication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())

	app, err := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.Status != model.ApplicationActive {
		t.Fatalf("status = %s, want %s", app.Status, model.ApplicationActive)
	}

	sub, err := f.appSvc.SubmitPhase(ctx, applicantX, app.ID, "p1", submit("our idea"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Status != model.SubmissionPending || sub.SolutionStatement != "our idea" {
		t.Fatalf("submission = %+v", sub)
	}
	stored, _ := f.apps.FindByID(ctx, app.ID)
	if got := stored.PhaseSubmissions["p1"].Status; got != model.SubmissionPending {
		t.Fatalf("stored phase status = %s, want %s", got, model.SubmissionPending)
	}

	app, err = f.reviewSvc.ReviewPhase(ctx, organizer, app.ID, "p1", lifecycle.ReviewDecision{Status: model.SubmissionRejected})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if app.Status != model.ApplicationRejected {
		t.Fatalf("status = %s, want %s", app.Status, model.ApplicationRejected)
	}

	_, err = f.appSvc.SubmitPhase(ctx, applicantX, app.ID, "p1", submit("second try"))
	assertCode(t, err, common.CodeApplicationRejected)

	want := []NotificationKind{NotifyApplicationReceived, NotifyPhaseRejected}
	got := f.notifier.kinds()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("notifications = %v, want %v", got, want)
	}

	// Re-applying after rejection is refused.
	_, err = f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
	assertCode(t, err, common.CodePreviouslyRejected)
}

func TestApply_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer cannot apply", func(t *testing.T) {
		f := newFixture(oneRoundHackathon())
		_, err := f.appSvc.Apply(ctx, organizer, hackathonID, lifecycle.Entry{IndividualName: "O"})
		assertCode(t, err, common.CodeForbidden)
	})

	t.Run("unknown hackathon", func(t *testing.T) {
		f := newFixture()
		_, err := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
		assertCode(t, err, common.CodeNotFound)
	})

	t.Run("team of one", func(t *testing.T) {
		f := newFixture(oneRoundHackathon())
		entry := lifecycle.Entry{AsTeam: true, TeamName: "Solo", TeamSize: 1, TeamMembers: []model.TeamMember{{Name: "X"}}}
		_, err := f.appSvc.Apply(ctx, applicantX, hackathonID, entry)
		assertCode(t, err, common.CodeTeamSizeInvalid)
	})

	t.Run("after end date", func(t *testing.T) {
		h := oneRoundHackathon()
		h.EndDate = fixedNow.Add(-time.Minute)
		f := newFixture(h)
		_, err := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
		assertCode(t, err, common.CodeRegistrationClosed)
	})

	t.Run("twice", func(t *testing.T) {
		f := newFixture(oneRoundHackathon())
		if _, err := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"}); err != nil {
			t.Fatalf("apply: %v", err)
		}
		_, err := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
		assertCode(t, err, common.CodeAlreadyApplied)
	})

	t.Run("stale results flag is reconciled first", func(t *testing.T) {
		f := newFixture(oneRoundHackathon())
		rank := 1
		f.apps.put(model.Application{ID: "ranked", HackathonID: hackathonID, ApplicantID: "user-z", Status: model.ApplicationActive, FinalRank: &rank})
		_, err := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
		assertCode(t, err, common.CodeResultsPublished)
		if !f.hackathons.stored(hackathonID).ResultsPublished {
			t.Fatal("results flag was not persisted")
		}
	})
}

func TestSubmitPhase_OwnershipAndPhase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())
	app, err := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	_, err = f.appSvc.SubmitPhase(ctx, applicantY, app.ID, "p1", submit("not mine"))
	assertCode(t, err, common.CodeForbidden)

	_, err = f.appSvc.SubmitPhase(ctx, applicantX, app.ID, "nope", submit("x"))
	assertCode(t, err, common.CodeNotFound)

	_, err = f.appSvc.SubmitPhase(ctx, applicantX, "missing", "p1", submit("x"))
	assertCode(t, err, common.CodeNotFound)

	stored, _ := f.apps.FindByID(ctx, app.ID)
	if len(stored.PhaseSubmissions) != 0 {
		t.Fatalf("failed submissions were persisted: %+v", stored.PhaseSubmissions)
	}
}

func TestSubmitPhase_LockBusy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())
	app, _ := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})

	release, err := f.locker.Acquire(ctx, app.ID)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	_, err = f.appSvc.SubmitPhase(ctx, applicantX, app.ID, "p1", submit("x"))
	assertCode(t, err, common.CodeLockUnavailable)
	if !errors.Is(err, common.ErrLockFailed) {
		t.Fatalf("err = %v, want lock failure", err)
	}
}

func TestScenario_ReuploadLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())
	app, _ := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
	if _, err := f.appSvc.SubmitPhase(ctx, applicantX, app.ID, "p1", submit("v1")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	for want := 1; want <= 2; want++ {
		got, err := f.reviewSvc.RequestReupload(ctx, organizer, app.ID, "p1", ReuploadRequest{Message: "more detail"})
		if err != nil {
			t.Fatalf("reupload %d: %v", want, err)
		}
		if n := got.PhaseSubmissions["p1"].ReuploadCount; n != want {
			t.Fatalf("reupload count = %d, want %d", n, want)
		}
	}

	_, err := f.reviewSvc.RequestReupload(ctx, organizer, app.ID, "p1", ReuploadRequest{})
	assertCode(t, err, common.CodeMaxReuploadsReached)

	stored, _ := f.apps.FindByID(ctx, app.ID)
	if n := stored.PhaseSubmissions["p1"].ReuploadCount; n != 2 {
		t.Fatalf("stored reupload count = %d, want 2", n)
	}
}

func TestReview_OnlyOwningOrganizer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())
	app, _ := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
	f.appSvc.SubmitPhase(ctx, applicantX, app.ID, "p1", submit("v1"))

	other := model.Caller{UserID: "org-2", Role: model.RoleIndustry}
	_, err := f.reviewSvc.ReviewPhase(ctx, other, app.ID, "p1", lifecycle.ReviewDecision{Status: model.SubmissionAccepted})
	assertCode(t, err, common.CodeForbidden)

	_, err = f.reviewSvc.RejectApplication(ctx, applicantX, app.ID, RejectRequest{})
	assertCode(t, err, common.CodeForbidden)

	_, err = f.appSvc.ListByHackathon(ctx, other, hackathonID)
	assertCode(t, err, common.CodeForbidden)

	_, err = f.appSvc.Get(ctx, applicantY, app.ID)
	assertCode(t, err, common.CodeForbidden)
}

func TestReviewPhase_DecisionIsFinal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())
	app, _ := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
	f.appSvc.SubmitPhase(ctx, applicantX, app.ID, "p1", submit("v1"))

	if _, err := f.reviewSvc.ReviewPhase(ctx, organizer, app.ID, "p1", lifecycle.ReviewDecision{Status: model.SubmissionRejected}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := f.reviewSvc.ReviewPhase(ctx, organizer, app.ID, "p1", lifecycle.ReviewDecision{Status: model.SubmissionAccepted})
	assertCode(t, err, common.CodeInvalidState)

	stored, _ := f.apps.FindByID(ctx, app.ID)
	if got := stored.PhaseSubmissions["p1"].Status; got != model.SubmissionRejected {
		t.Fatalf("stored phase status = %s, want %s", got, model.SubmissionRejected)
	}
	if stored.Status != model.ApplicationRejected {
		t.Fatalf("stored application status = %s, want %s", stored.Status, model.ApplicationRejected)
	}
}

func TestRejectApplication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())
	app, _ := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})

	got, err := f.reviewSvc.RejectApplication(ctx, organizer, app.ID, RejectRequest{RejectionMessage: "code of conduct"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != model.ApplicationRejected || got.RejectionMessage != "code of conduct" {
		t.Fatalf("application = %s/%q", got.Status, got.RejectionMessage)
	}

	list, err := f.appSvc.ListByHackathon(ctx, organizer, hackathonID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Status != model.ApplicationRejected {
		t.Fatalf("list = %+v", list)
	}
	mine, _ := f.appSvc.ListMine(ctx, applicantX)
	if len(mine) != 1 {
		t.Fatalf("mine = %d, want 1", len(mine))
	}
}

func TestHackathonGet_ReconcilesOnRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())
	rank := 1
	f.apps.put(model.Application{ID: "a1", HackathonID: hackathonID, ApplicantID: "user-z", Status: model.ApplicationActive, FinalRank: &rank})

	for _, ref := range []string{hackathonID, "spring-hack"} {
		h, err := f.hackSvc.Get(ctx, ref)
		if err != nil {
			t.Fatalf("get %s: %v", ref, err)
		}
		if !h.ResultsPublished {
			t.Fatalf("get %s: results not published", ref)
		}
	}
	if f.hackathons.saves != 1 {
		t.Fatalf("saves = %d, want 1", f.hackathons.saves)
	}

	_, err := f.hackSvc.Get(ctx, "no-such-slug")
	assertCode(t, err, common.CodeNotFound)
}

func TestHackathonLeaderboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())
	f.apps.put(model.Application{ID: "a1", HackathonID: hackathonID, ApplicantID: "user-z", IndividualName: "Zed", Status: model.ApplicationActive})

	board, err := f.hackSvc.Leaderboard(ctx, "spring-hack")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if board.ResultsPublished || len(board.Entries) != 0 {
		t.Fatalf("board before ranking = %+v", board)
	}

	if _, err := f.rankSvc.HandleRankings(ctx, RankingPayload{HackathonID: hackathonID, Rankings: []RankingItem{{ApplicationID: "a1", Rank: 1}}}); err != nil {
		t.Fatalf("rankings: %v", err)
	}
	board, err = f.hackSvc.Leaderboard(ctx, hackathonID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if !board.ResultsPublished || len(board.Entries) != 1 || board.Entries[0].DisplayName != "Zed" {
		t.Fatalf("board after ranking = %+v", board)
	}

	_, err = f.hackSvc.Leaderboard(ctx, "no-such-slug")
	assertCode(t, err, common.CodeNotFound)
}

func TestHackathonCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	req := CreateHackathonRequest{
		Title:     "Spring Hack",
		StartDate: "2026-04-01",
		EndDate:   "2026-04-03T18:00:00Z",
		Phases: []PhaseRequest{
			{Name: "Idea", Deadline: "2026-04-01T18:00:00Z"},
			{Name: "Demo", Deadline: "2026-04-03T12:00:00Z"},
		},
	}

	_, err := f.hackSvc.Create(ctx, applicantX, req)
	assertCode(t, err, common.CodeForbidden)

	h, err := f.hackSvc.Create(ctx, organizer, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.Slug != "spring-hack" || !h.AllowIndividual || h.OrganizerID != organizerID {
		t.Fatalf("hackathon = %+v", h)
	}
	if len(h.Phases) != 2 || h.Phases[0].ID == "" || h.Phases[0].ID == h.Phases[1].ID {
		t.Fatalf("phases = %+v", h.Phases)
	}

	again, err := f.hackSvc.Create(ctx, organizer, req)
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if again.Slug == h.Slug {
		t.Fatalf("slug %s reused", again.Slug)
	}

	mine, err := f.hackSvc.ListMine(ctx, organizer)
	if err != nil || len(mine) != 2 {
		t.Fatalf("mine = %d, %v", len(mine), err)
	}

	bad := req
	bad.Phases = nil
	_, err = f.hackSvc.Create(ctx, organizer, bad)
	assertCode(t, err, common.CodeBadRequest)

	bad = req
	bad.EndDate = "2026-03-01"
	_, err = f.hackSvc.Create(ctx, organizer, bad)
	assertCode(t, err, common.CodeBadRequest)
}

func TestRankings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())
	app, _ := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})
	f.apps.put(model.Application{ID: "elsewhere", HackathonID: "other", ApplicantID: "user-q", Status: model.ApplicationActive})

	_, err := f.rankSvc.HandleRankings(ctx, RankingPayload{HackathonID: hackathonID, Rankings: []RankingItem{{ApplicationID: app.ID, Rank: 0}}})
	assertCode(t, err, common.CodeBadRequest)

	res, err := f.rankSvc.HandleRankings(ctx, RankingPayload{
		HackathonID: hackathonID,
		Rankings:    []RankingItem{{ApplicationID: app.ID, Rank: 1}, {ApplicationID: "elsewhere", Rank: 2}},
	})
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if res.Updated != 1 || len(res.Skipped) != 1 || !res.ResultsPublished {
		t.Fatalf("result = %+v", res)
	}

	stored, _ := f.apps.FindByID(ctx, app.ID)
	if stored.FinalRank == nil || *stored.FinalRank != 1 {
		t.Fatalf("final rank = %v", stored.FinalRank)
	}
	if !f.hackathons.stored(hackathonID).ResultsPublished {
		t.Fatal("results flag not persisted")
	}
}

func TestMutateApplication_StaleWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(oneRoundHackathon())
	app, _ := f.appSvc.Apply(ctx, applicantX, hackathonID, lifecycle.Entry{IndividualName: "X"})

	_, _, err := mutateApplication(ctx, f.locker, f.apps, f.hackathons, app.ID, func(a *model.Application, _ *model.Hackathon) error {
		// A writer that bypassed the lock got there first.
		concurrent := *a
		if err := f.apps.Save(ctx, &concurrent); err != nil {
			t.Fatalf("concurrent save: %v", err)
		}
		a.RejectionMessage = "lost update"
		return nil
	})
	if !errors.Is(err, common.ErrStaleWrite) {
		t.Fatalf("err = %v, want stale write", err)
	}
	if common.HTTPStatusFromError(err) != 409 {
		t.Fatalf("status = %d, want 409", common.HTTPStatusFromError(err))
	}
}
