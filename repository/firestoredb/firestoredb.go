// Package firestoredb stores tasks and users in Cloud Firestore.
package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"teamboard/model"
	"teamboard/repository"
)

const (
	TasksCollection = "Tasks"
	UsersCollection = "Users"
)

type TaskRepository struct {
	client *firestore.Client
}

func NewTaskRepository(client *firestore.Client) *TaskRepository {
	return &TaskRepository{client: client}
}

// Find filters with equality clauses and orders in memory, so no composite
// index is needed for status+createdat.
func (r *TaskRepository) Find(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	q := r.client.Collection(TasksCollection).Query
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	if filter.AssignedTo != "" {
		q = q.Where("assignedto", "==", filter.AssignedTo)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var tasks []model.Task
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query tasks: %w", err)
		}
		var task model.Task
		if err := doc.DataTo(&task); err != nil {
			return nil, fmt.Errorf("decode task %s: %w", doc.Ref.ID, err)
		}
		tasks = append(tasks, task)
	}

	repository.SortNewestFirst(tasks)
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (model.Task, error) {
	doc, err := r.client.Collection(TasksCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.Task{}, repository.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	var task model.Task
	if err := doc.DataTo(&task); err != nil {
		return model.Task{}, fmt.Errorf("decode task %s: %w", id, err)
	}
	return task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task model.Task) error {
	if _, err := r.client.Collection(TasksCollection).Doc(task.TaskID).Set(ctx, task); err != nil {
		return fmt.Errorf("save task %s: %w", task.TaskID, err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(TasksCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrNotFound
		}
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create checks email uniqueness and writes inside one transaction.
func (r *UserRepository) Create(ctx context.Context, user model.User) error {
	users := r.client.Collection(UsersCollection)
	ref := users.Doc(user.UserID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(users.Where("email", "==", strings.ToLower(user.Email)).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			return repository.ErrDuplicate
		}
		return tx.Create(ref, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) || status.Code(err) == codes.AlreadyExists {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	doc, err := r.client.Collection(UsersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return decodeUser(doc)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	docs, err := r.client.Collection(UsersCollection).
		Where("email", "==", strings.ToLower(email)).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return model.User{}, fmt.Errorf("query user by email: %w", err)
	}
	if len(docs) == 0 {
		return model.User{}, repository.ErrNotFound
	}
	return decodeUser(docs[0])
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	users := r.client.Collection(UsersCollection)
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, users.Doc(id))
	}

	snaps, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	result := make([]model.User, 0, len(snaps))
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		u, err := decodeUser(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	iter := r.client.Collection(UsersCollection).Documents(ctx)
	defer iter.Stop()

	var users []model.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		u, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *UserRepository) Save(ctx context.Context, user model.User) error {
	users := r.client.Collection(UsersCollection)
	ref := users.Doc(user.UserID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(users.Where("email", "==", strings.ToLower(user.Email))).GetAll()
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if doc.Ref.ID != user.UserID {
				return repository.ErrDuplicate
			}
		}
		return tx.Set(ref, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("save user %s: %w", user.UserID, err)
	}
	return nil
}

func decodeUser(doc *firestore.DocumentSnapshot) (model.User, error) {
	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return model.User{}, fmt.Errorf("decode user %s: %w", doc.Ref.ID, err)
	}
	return user, nil
}
