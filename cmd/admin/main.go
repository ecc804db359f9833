package main

import (
	"bufio"
	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/profile"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/thread"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

const usage = `Usage: admin <command> [args]

Commands:
  migrate
  create-user <email> <full_name> [role]
  set-role <user_id> <role>
  token <user_id>
  add-category <name>
  chat <complaint_id> <user_id>
  comments <complaint_id> <user_id> [internal]`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// token не потребує бази
	if os.Args[1] == "token" {
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin token <user_id>")
			os.Exit(1)
		}
		token, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL).Issue(os.Args[2])
		if err != nil {
			log.Fatalf("Error issuing token: %v", err)
		}
		fmt.Println(token)
		return
	}

	s, err := storage.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect storage: %v", err)
	}
	defer s.Close()

	switch os.Args[1] {
	case "migrate":
		if err := storage.Migrate(s.DB); err != nil {
			log.Fatalf("Error running migrations: %v", err)
		}
		fmt.Println("Migrations applied.")
	case "create-user":
		if len(os.Args) < 4 || len(os.Args) > 5 {
			fmt.Println("Usage: admin create-user <email> <full_name> [role]")
			os.Exit(1)
		}
		role := models.RoleStudent
		if len(os.Args) == 5 {
			role = models.Role(os.Args[4])
		}
		if !role.Valid() {
			fmt.Printf("Unknown role %q.\n", role)
			os.Exit(1)
		}
		p := &models.Profile{Email: os.Args[2], FullName: os.Args[3]}
		if err := s.CreateUser(ctx, p, role); err != nil {
			log.Fatalf("Error creating user: %v", err)
		}
		fmt.Printf("User %s created with role %s.\n", p.ID, role)
	case "set-role":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-role <user_id> <role>")
			os.Exit(1)
		}
		role := models.Role(os.Args[3])
		if !role.Valid() {
			fmt.Printf("Unknown role %q.\n", role)
			os.Exit(1)
		}
		if err := s.SetRole(ctx, os.Args[2], role); err != nil {
			log.Fatalf("Error setting role: %v", err)
		}
		fmt.Printf("User %s is now %s.\n", os.Args[2], role)
	case "add-category":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin add-category <name>")
			os.Exit(1)
		}
		c, err := s.CreateCategory(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Error creating category: %v", err)
		}
		fmt.Printf("Category %s created.\n", c.ID)
	case "chat":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin chat <complaint_id> <user_id>")
			os.Exit(1)
		}
		if err := chat(ctx, s, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Chat ended: %v", err)
		}
	case "comments":
		if len(os.Args) < 4 || len(os.Args) > 5 || (len(os.Args) == 5 && os.Args[4] != "internal") {
			fmt.Println("Usage: admin comments <complaint_id> <user_id> [internal]")
			os.Exit(1)
		}
		if err := comments(ctx, s, os.Args[2], os.Args[3], len(os.Args) == 5); err != nil {
			log.Fatalf("Comments ended: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

// openComplaint перевіряє, що userID бачить скаргу, і готує сервіс від його імені.
func openComplaint(ctx context.Context, s *storage.Service, complaintID, userID string) (models.Actor, *complaint.Service, *profile.Joiner, error) {
	role, err := s.RoleOf(ctx, userID)
	if err != nil {
		return models.Actor{}, nil, nil, err
	}
	actor := models.Actor{UserID: userID, Role: role}

	joiner := profile.NewJoiner(s)
	complaints := complaint.NewService(s,
		storage.Complaints(s), storage.Comments(s), storage.ChatMessages(s), joiner)

	ok, err := complaints.CanView(ctx, actor, complaintID)
	if err != nil {
		return models.Actor{}, nil, nil, err
	}
	if !ok {
		return models.Actor{}, nil, nil, fmt.Errorf("complaint %s not found", complaintID)
	}
	return actor, complaints, joiner, nil
}

// chat прив'язує SyncedList до чату скарги, друкує нові повідомлення і
// надсилає рядки зі stdin від імені userID.
func chat(ctx context.Context, s *storage.Service, complaintID, userID string) error {
	actor, complaints, joiner, err := openComplaint(ctx, s, complaintID, userID)
	if err != nil {
		return err
	}
	list := thread.NewSyncedList[models.ChatMessage](
		thread.NewCollectionSource(storage.ChatMessages(s), "complaint_id"), joiner)
	defer list.Close()
	if err := list.Bind(ctx, complaintID); err != nil {
		return err
	}
	return follow(ctx, list, thread.NewMessageAppender(list, complaints.PostMessage), actor,
		func(m models.ChatMessage) string {
			return m.Message
		})
}

// comments робить те саме для коментарів. Студент не бачить внутрішніх.
func comments(ctx context.Context, s *storage.Service, complaintID, userID string, internal bool) error {
	actor, complaints, joiner, err := openComplaint(ctx, s, complaintID, userID)
	if err != nil {
		return err
	}
	list := thread.NewSyncedList[models.Comment](thread.NewCommentSource(storage.Comments(s), actor), joiner)
	defer list.Close()
	if err := list.Bind(ctx, complaintID); err != nil {
		return err
	}
	return follow(ctx, list, thread.NewCommentAppender(list, internal, complaints.AddComment), actor,
		func(c models.Comment) string {
			if c.IsInternal {
				return "(internal) " + c.Comment
			}
			return c.Comment
		})
}

func follow[T thread.Record](
	ctx context.Context,
	list *thread.SyncedList[T],
	appender *thread.Appender[T],
	actor models.Actor,
	text func(T) string,
) error {
	printed := make(map[string]bool)
	show := func() {
		for _, e := range list.Snapshot() {
			id := e.Record.GetID()
			if e.Pending || printed[id] {
				continue
			}
			printed[id] = true
			fmt.Printf("[%s] %s: %s\n", e.Record.GetCreatedAt().Format("15:04"), e.AuthorName, text(e.Record))
		}
	}
	show()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-list.Updates():
			if !ok {
				return nil
			}
			show()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if _, err := appender.Send(ctx, actor, line); err != nil {
				fmt.Printf("Not sent: %v\n", err)
			}
		}
	}
}
