//go:build integration

package repositories_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"blog-cms/config"
	"blog-cms/logging"
	"blog-cms/models"
	"blog-cms/repositories"
)

var (
	db        *gorm.DB
	container *postgres.PostgresContainer
)

var _ = BeforeSuite(func() {
	ctx := context.Background()

	var err error
	container, err = postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blog_test"),
		postgres.WithUsername("blog"),
		postgres.WithPassword("blog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	Expect(err).NotTo(HaveOccurred())

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	Expect(err).NotTo(HaveOccurred())

	db, err = config.InitDB(ctx, config.DatabaseConfig{
		Driver:         config.DriverPostgres,
		DSN:            dsn,
		ConnectRetries: 3,
	}, logging.Discard())
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if container != nil {
		_ = container.Terminate(context.Background())
	}
})

var _ = Describe("Postgres repositories", func() {
	var (
		ctx   context.Context
		users repositories.UserRepository
		posts repositories.PostRepository
		cats  repositories.CategoryRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		users = repositories.NewUserRepository(db)
		posts = repositories.NewPostRepository(db)
		cats = repositories.NewCategoryRepository(db)

		Expect(db.Exec("TRUNCATE posts, categories, users RESTART IDENTITY CASCADE").Error).To(Succeed())
	})

	Describe("UserRepository", func() {
		It("reports a duplicate email as ErrDuplicateKey", func() {
			Expect(users.Create(ctx, &models.User{Email: "a@example.com", PasswordHash: "h", Name: "A", Role: models.RoleUser})).To(Succeed())

			err := users.Create(ctx, &models.User{Email: "a@example.com", PasswordHash: "h", Name: "B", Role: models.RoleUser})
			Expect(err).To(MatchError(repositories.ErrDuplicateKey))
		})

		It("lets exactly one concurrent registration win", func() {
			const workers = 10
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				wins int
			)
			for range workers {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					err := users.Create(ctx, &models.User{Email: "race@example.com", PasswordHash: "h", Name: "R", Role: models.RoleUser})
					if err == nil {
						mu.Lock()
						wins++
						mu.Unlock()
						return
					}
					Expect(err).To(MatchError(repositories.ErrDuplicateKey))
				}()
			}
			wg.Wait()
			Expect(wins).To(Equal(1))
		})
	})

	Describe("PostRepository", func() {
		var (
			author   *models.User
			category *models.Category
		)

		BeforeEach(func() {
			author = &models.User{Email: "alice@example.com", PasswordHash: "h", Name: "Alice", Role: models.RoleUser}
			Expect(users.Create(ctx, author)).To(Succeed())
			category = &models.Category{Name: "Tech"}
			Expect(cats.Create(ctx, category)).To(Succeed())
		})

		newPost := func(slug, title, content string) *models.Post {
			return &models.Post{
				Title: title, Slug: slug, Content: content, Status: models.StatusPublished,
				CategoryID: category.ID, AuthorID: author.ID,
			}
		}

		It("rejects a duplicate slug", func() {
			Expect(posts.Create(ctx, newPost("hello-world", "Hello", "x"))).To(Succeed())
			Expect(posts.Create(ctx, newPost("hello-world", "Again", "y"))).To(MatchError(repositories.ErrDuplicateKey))
		})

		It("searches title and content case-insensitively with literal wildcards", func() {
			Expect(posts.Create(ctx, newPost("go-tips", "Go Tips", "short"))).To(Succeed())
			Expect(posts.Create(ctx, newPost("percent", "100% done", "body"))).To(Succeed())
			Expect(posts.Create(ctx, newPost("other", "Other", "nothing here"))).To(Succeed())

			found, total, err := posts.List(ctx, repositories.PostFilter{Query: "GO", Page: 1, Size: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(found[0].Slug).To(Equal("go-tips"))
			Expect(found[0].Author.Name).To(Equal("Alice"))

			found, _, err = posts.List(ctx, repositories.PostFilter{Query: "%", Page: 1, Size: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].Slug).To(Equal("percent"))
		})

		It("counts posts that block category deletion", func() {
			Expect(posts.Create(ctx, newPost("p", "P", "c"))).To(Succeed())
			n, err := cats.CountPosts(ctx, category.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))
		})
	})
})
