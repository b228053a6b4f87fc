package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"codequest/internal/common"
	"codequest/internal/domain/model"
)

type TeamRepository interface {
	// CreateWithLeader inserts the team and makes its creator the leader.
	CreateWithLeader(ctx context.Context, team *model.Team) error
	FindByID(ctx context.Context, id string) (*model.Team, error)
	FindByInviteCode(ctx context.Context, code string) (*model.Team, error)
	List(ctx context.Context, limit int) ([]model.Team, error)

	ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error)
	FindMember(ctx context.Context, teamID, userID string) (*model.TeamMember, error)
	AddMember(ctx context.Context, teamID, userID string, role model.TeamRole) error
	// RemoveMember deletes the membership unless the user leads a team that still has
	// other members, in which case it returns common.ErrLeaderCannotLeave.
	RemoveMember(ctx context.Context, teamID, userID string) error

	CreateInvitation(ctx context.Context, inv *model.TeamInvitation) error
	ListPendingInvitations(ctx context.Context, inviteeID string) ([]model.TeamInvitation, error)
	// RespondInvitation answers a pending invitation addressed to inviteeID.
	// Accepting also inserts the membership in the same transaction.
	RespondInvitation(ctx context.Context, invitationID, inviteeID string, accept bool, at time.Time) (*model.TeamInvitation, error)
}

type pgTeamRepository struct {
	db *sql.DB
}

func NewPgTeamRepository(db *sql.DB) TeamRepository {
	return &pgTeamRepository{db: db}
}

// teamSelect aggregates member counts and summed points alongside each team row.
const teamSelect = `SELECT t.id, t.name, t.description, t.invite_code, t.is_open, t.created_by, t.created_at,
	COUNT(tm.user_id), COALESCE(SUM(us.total_points), 0)
	FROM teams t
	LEFT JOIN team_members tm ON tm.team_id = t.id
	LEFT JOIN user_stats us ON us.user_id = tm.user_id`

const teamGroupBy = ` GROUP BY t.id`

func scanTeam(row rowScanner) (*model.Team, error) {
	t := &model.Team{}
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.InviteCode, &t.IsOpen, &t.CreatedBy, &t.CreatedAt,
		&t.MemberCount, &t.TotalPoints)
	return t, err
}

func (r *pgTeamRepository) CreateWithLeader(ctx context.Context, team *model.Team) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO teams (id, name, description, invite_code, is_open, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING created_at`,
			team.ID, team.Name, team.Description, team.InviteCode, team.IsOpen, team.CreatedBy,
		).Scan(&team.CreatedAt)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)`,
			team.ID, team.CreatedBy, model.TeamRoleLeader)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return common.E(common.ErrConflict, "Team name already taken")
		}
		return fmt.Errorf("pgTeamRepository.CreateWithLeader: %w", err)
	}
	team.MemberCount = 1
	return nil
}

func (r *pgTeamRepository) findOne(ctx context.Context, where string, arg any, op string) (*model.Team, error) {
	t, err := scanTeam(r.db.QueryRowContext(ctx, teamSelect+` WHERE `+where+` = $1`+teamGroupBy, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrTeamNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.%s: %w", op, err)
	}
	return t, nil
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id string) (*model.Team, error) {
	return r.findOne(ctx, "t.id", id, "FindByID")
}

func (r *pgTeamRepository) FindByInviteCode(ctx context.Context, code string) (*model.Team, error) {
	return r.findOne(ctx, "t.invite_code", code, "FindByInviteCode")
}

func (r *pgTeamRepository) List(ctx context.Context, limit int) ([]model.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		teamSelect+teamGroupBy+` ORDER BY COALESCE(SUM(us.total_points), 0) DESC, t.created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.List query: %w", err)
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("pgTeamRepository.List scan: %w", err)
		}
		teams = append(teams, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.List rows.Err: %w", err)
	}
	return teams, nil
}

const memberSelect = `SELECT tm.team_id, tm.user_id, u.username, tm.role, COALESCE(us.total_points, 0), tm.joined_at
	FROM team_members tm
	JOIN users u ON u.id = tm.user_id
	LEFT JOIN user_stats us ON us.user_id = tm.user_id`

func scanMember(row rowScanner) (*model.TeamMember, error) {
	m := &model.TeamMember{}
	err := row.Scan(&m.TeamID, &m.UserID, &m.Username, &m.Role, &m.TotalPoints, &m.JoinedAt)
	return m, err
}

func (r *pgTeamRepository) ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx,
		memberSelect+` WHERE tm.team_id = $1 ORDER BY tm.role = 'leader' DESC, tm.joined_at ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListMembers query: %w", err)
	}
	defer rows.Close()

	members := []model.TeamMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("pgTeamRepository.ListMembers scan: %w", err)
		}
		members = append(members, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListMembers rows.Err: %w", err)
	}
	return members, nil
}

func (r *pgTeamRepository) FindMember(ctx context.Context, teamID, userID string) (*model.TeamMember, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx, memberSelect+` WHERE tm.team_id = $1 AND tm.user_id = $2`, teamID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotTeamMember
		}
		return nil, fmt.Errorf("pgTeamRepository.FindMember: %w", err)
	}
	return m, nil
}

func (r *pgTeamRepository) AddMember(ctx context.Context, teamID, userID string, role model.TeamRole) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)`, teamID, userID, role)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrAlreadyMember
		}
		return fmt.Errorf("pgTeamRepository.AddMember: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members
		 WHERE team_id = $1 AND user_id = $2
		   AND NOT (role = $3 AND EXISTS (
		       SELECT 1 FROM team_members o WHERE o.team_id = $1 AND o.user_id <> $2))`,
		teamID, userID, model.TeamRoleLeader)
	if err != nil {
		return fmt.Errorf("pgTeamRepository.RemoveMember: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := r.FindMember(ctx, teamID, userID); err != nil {
		return err
	}
	return common.ErrLeaderCannotLeave
}

func (r *pgTeamRepository) CreateInvitation(ctx context.Context, inv *model.TeamInvitation) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO team_invitations (id, team_id, inviter_id, invitee_id, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		inv.ID, inv.TeamID, inv.InviterID, inv.InviteeID, inv.Status,
	).Scan(&inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return common.E(common.ErrConflict, "User already has a pending invitation to this team")
		}
		return fmt.Errorf("pgTeamRepository.CreateInvitation: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) ListPendingInvitations(ctx context.Context, inviteeID string) ([]model.TeamInvitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.team_id, t.name, i.inviter_id, i.invitee_id, i.status, i.created_at, i.responded_at
		 FROM team_invitations i
		 JOIN teams t ON t.id = i.team_id
		 WHERE i.invitee_id = $1 AND i.status = $2
		 ORDER BY i.created_at DESC`, inviteeID, model.InvitationPending)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListPendingInvitations query: %w", err)
	}
	defer rows.Close()

	invs := []model.TeamInvitation{}
	for rows.Next() {
		var inv model.TeamInvitation
		if err := rows.Scan(&inv.ID, &inv.TeamID, &inv.TeamName, &inv.InviterID, &inv.InviteeID,
			&inv.Status, &inv.CreatedAt, &inv.RespondedAt); err != nil {
			return nil, fmt.Errorf("pgTeamRepository.ListPendingInvitations scan: %w", err)
		}
		invs = append(invs, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListPendingInvitations rows.Err: %w", err)
	}
	return invs, nil
}

func (r *pgTeamRepository) RespondInvitation(ctx context.Context, invitationID, inviteeID string, accept bool, at time.Time) (*model.TeamInvitation, error) {
	status := model.InvitationDeclined
	if accept {
		status = model.InvitationAccepted
	}

	inv := &model.TeamInvitation{}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`UPDATE team_invitations SET status = $1, responded_at = $2
			 WHERE id = $3 AND invitee_id = $4 AND status = $5
			 RETURNING id, team_id, inviter_id, invitee_id, status, created_at, responded_at`,
			status, at, invitationID, inviteeID, model.InvitationPending,
		).Scan(&inv.ID, &inv.TeamID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt, &inv.RespondedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrInvitationNotFound
			}
			return fmt.Errorf("answer invitation: %w", err)
		}
		if !accept {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)
			 ON CONFLICT (team_id, user_id) DO NOTHING`,
			inv.TeamID, inv.InviteeID, model.TeamRoleMember)
		if err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrInvitationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgTeamRepository.RespondInvitation: %w", err)
	}
	return inv, nil
}
