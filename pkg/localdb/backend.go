package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"tableflip.dev/lovenote/pkg/gateway"
	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/timeutil"
)

var _ gateway.Backend = (*DB)(nil)

const (
	insertSpaceStatement = `
	INSERT INTO spaces (id, space_name, secret, partner1_name, partner2_name,
		anniversary_date, partner1_birthday, partner2_birthday, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	spaceBySecretStatement = `
	SELECT id, space_name, secret, partner1_name, partner2_name,
		anniversary_date, partner1_birthday, partner2_birthday, created_at
	FROM spaces
	WHERE secret = ?
	LIMIT 1
	`

	listPostsStatement = `
	SELECT id, space_id, author_name, content, post_type, mood_type, is_private, created_at
	FROM posts
	WHERE space_id = ?
	ORDER BY created_at DESC, rowid DESC
	`

	listLikesStatement = `
	SELECT l.id, l.post_id, l.author_name
	FROM likes l JOIN posts p ON p.id = l.post_id
	WHERE p.space_id = ?
	ORDER BY l.created_at, l.rowid
	`

	listCommentsStatement = `
	SELECT c.id, c.post_id, c.author_name, c.content, c.created_at
	FROM comments c JOIN posts p ON p.id = c.post_id
	WHERE p.space_id = ?
	ORDER BY c.created_at, c.rowid
	`

	insertPostStatement = `
	INSERT INTO posts (id, space_id, author_name, content, post_type, mood_type, is_private, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	findLikeStatement = `
	SELECT id, post_id, author_name FROM likes WHERE post_id = ? AND author_name = ?
	`

	insertLikeStatement = `
	INSERT INTO likes (id, post_id, author_name, created_at) VALUES (?, ?, ?, ?)
	`

	deleteLikeStatement = `
	DELETE FROM likes WHERE post_id = ? AND author_name = ?
	`

	insertCommentStatement = `
	INSERT INTO comments (id, post_id, author_name, content, created_at) VALUES (?, ?, ?, ?, ?)
	`
)

// classify marks uniqueness violations so the gateway can tell them apart.
func classify(op string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("localdb: %s: %w: %v", op, gateway.ErrUniqueViolation, err)
	}
	return fmt.Errorf("localdb: %s: %w", op, err)
}

func stamp(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func unstamp(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

func dateValue(d *timeutil.Date) interface{} {
	if !timeutil.Present(d) {
		return nil
	}
	return d.String()
}

func scanDate(v sql.NullString) (*timeutil.Date, error) {
	if !v.Valid {
		return nil, nil
	}
	return timeutil.ParseOptionalDate(v.String)
}

func (d *DB) InsertSpace(ctx context.Context, f journal.SpaceFields) (*journal.Space, error) {
	s := journal.Space{
		ID:               uuid.NewString(),
		SpaceName:        f.SpaceName,
		Secret:           f.Secret,
		Partner1Name:     f.Partner1Name,
		Partner2Name:     f.Partner2Name,
		AnniversaryDate:  f.AnniversaryDate,
		Partner1Birthday: f.Partner1Birthday,
		Partner2Birthday: f.Partner2Birthday,
		CreatedAt:        unstamp(stamp(d.now())),
	}
	_, err := d.db.ExecContext(ctx, insertSpaceStatement,
		s.ID, s.SpaceName, s.Secret, s.Partner1Name, s.Partner2Name,
		dateValue(s.AnniversaryDate), dateValue(s.Partner1Birthday), dateValue(s.Partner2Birthday),
		stamp(s.CreatedAt))
	if err != nil {
		return nil, classify("insert space", err)
	}
	return &s, nil
}

func (d *DB) SpaceBySecret(ctx context.Context, secret string) (*journal.Space, error) {
	var (
		s           journal.Space
		ann, b1, b2 sql.NullString
		created     int64
	)
	err := d.db.QueryRowContext(ctx, spaceBySecretStatement, secret).Scan(
		&s.ID, &s.SpaceName, &s.Secret, &s.Partner1Name, &s.Partner2Name, &ann, &b1, &b2, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find space", err)
	}
	if s.AnniversaryDate, err = scanDate(ann); err != nil {
		return nil, fmt.Errorf("localdb: space %s anniversary: %w", s.ID, err)
	}
	if s.Partner1Birthday, err = scanDate(b1); err != nil {
		return nil, fmt.Errorf("localdb: space %s birthday: %w", s.ID, err)
	}
	if s.Partner2Birthday, err = scanDate(b2); err != nil {
		return nil, fmt.Errorf("localdb: space %s birthday: %w", s.ID, err)
	}
	s.CreatedAt = unstamp(created)
	return &s, nil
}

func (d *DB) ListPosts(ctx context.Context, spaceID string) ([]journal.Post, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("list posts", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, listPostsStatement, spaceID)
	if err != nil {
		return nil, classify("list posts", err)
	}
	posts := make([]journal.Post, 0)
	index := map[string]int{}
	for rows.Next() {
		var (
			p       journal.Post
			mood    sql.NullString
			created int64
		)
		if err := rows.Scan(&p.ID, &p.SpaceID, &p.AuthorName, &p.Content, &p.PostType, &mood, &p.IsPrivate, &created); err != nil {
			rows.Close()
			return nil, classify("scan post", err)
		}
		if mood.Valid {
			m := journal.Mood(mood.String)
			p.MoodType = &m
		}
		p.CreatedAt = unstamp(created)
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify("list posts", err)
	}

	likes, err := tx.QueryContext(ctx, listLikesStatement, spaceID)
	if err != nil {
		return nil, classify("list likes", err)
	}
	for likes.Next() {
		var l journal.Like
		if err := likes.Scan(&l.ID, &l.PostID, &l.AuthorName); err != nil {
			likes.Close()
			return nil, classify("scan like", err)
		}
		if i, ok := index[l.PostID]; ok {
			posts[i].Likes = append(posts[i].Likes, l)
		}
	}
	likes.Close()
	if err := likes.Err(); err != nil {
		return nil, classify("list likes", err)
	}

	comments, err := tx.QueryContext(ctx, listCommentsStatement, spaceID)
	if err != nil {
		return nil, classify("list comments", err)
	}
	defer comments.Close()
	for comments.Next() {
		var (
			c       journal.Comment
			created int64
		)
		if err := comments.Scan(&c.ID, &c.PostID, &c.AuthorName, &c.Content, &created); err != nil {
			return nil, classify("scan comment", err)
		}
		c.CreatedAt = unstamp(created)
		if i, ok := index[c.PostID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	if err := comments.Err(); err != nil {
		return nil, classify("list comments", err)
	}
	return posts, nil
}

func (d *DB) InsertPost(ctx context.Context, n journal.NewPost) error {
	var mood interface{}
	if m := n.MoodPtr(); m != nil {
		mood = string(*m)
	}
	_, err := d.db.ExecContext(ctx, insertPostStatement,
		uuid.NewString(), n.SpaceID, n.AuthorName, n.Content, string(n.PostType), mood, n.IsPrivate, stamp(d.now()))
	if err != nil {
		return classify("insert post", err)
	}
	return nil
}

func (d *DB) FindLike(ctx context.Context, postID, author string) (*journal.Like, error) {
	var l journal.Like
	err := d.db.QueryRowContext(ctx, findLikeStatement, postID, author).Scan(&l.ID, &l.PostID, &l.AuthorName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find like", err)
	}
	return &l, nil
}

func (d *DB) InsertLike(ctx context.Context, postID, author string) error {
	_, err := d.db.ExecContext(ctx, insertLikeStatement, uuid.NewString(), postID, author, stamp(d.now()))
	if err != nil {
		return classify("insert like", err)
	}
	return nil
}

func (d *DB) DeleteLike(ctx context.Context, postID, author string) error {
	if _, err := d.db.ExecContext(ctx, deleteLikeStatement, postID, author); err != nil {
		return classify("delete like", err)
	}
	return nil
}

func (d *DB) InsertComment(ctx context.Context, postID, author, content string) error {
	_, err := d.db.ExecContext(ctx, insertCommentStatement, uuid.NewString(), postID, author, content, stamp(d.now()))
	if err != nil {
		return classify("insert comment", err)
	}
	return nil
}
