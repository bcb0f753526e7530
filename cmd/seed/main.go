package main

import (
	"context"
	"log"
	"strings"
	"time"

	"barbershop-backend/internal/admin"
	"barbershop-backend/internal/announcements"
	"barbershop-backend/internal/auth"
	"barbershop-backend/internal/bookings"
	"barbershop-backend/internal/config"
	"barbershop-backend/internal/db"
	"barbershop-backend/internal/gallery"
)

var sampleImages = []gallery.UpsertRequest{
	{
		URL:     "https://images.example.com/barbershop/fade.jpg",
		Caption: gallery.Caption{AR: "تدرج كلاسيكي", EN: "Classic fade", HE: "פייד קלאסי"},
	},
	{
		URL:     "https://images.example.com/barbershop/beard.jpg",
		Caption: gallery.Caption{AR: "تشذيب اللحية", EN: "Beard sculpting", HE: "עיצוב זקן"},
	},
	{
		URL:     "https://images.example.com/barbershop/shop.jpg",
		Caption: gallery.Caption{AR: "المحل", EN: "The shop", HE: "המספרה"},
	},
}

var sampleAnnouncements = []announcements.UpsertRequest{
	{
		Text: announcements.Text{
			AR: "احجز موعدك عبر الإنترنت واحصل على نقاط ولاء",
			EN: "Book online and earn loyalty points",
			HE: "הזמינו תור אונליין וצברו נקודות",
		},
		Type: announcements.TypePromo,
	},
	{
		Text: announcements.Text{
			AR: "المحل مغلق يوم السبت",
			EN: "Closed on Saturdays",
			HE: "סגור בשבת",
		},
		Type: announcements.TypeInfo,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	if err := seedAdmin(ctx, admin.NewUserRepository(cols.Users), cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	backfilled, err := bookings.NewRepository(cols.Bookings).BackfillPhoneKeys(ctx)
	if err != nil {
		log.Fatalf("seed bookings: %v", err)
	}
	if backfilled > 0 {
		log.Printf("seed bookings: phone keys set on %d bookings", backfilled)
	}

	galleryService := gallery.NewService(gallery.NewRepository(cols.Gallery), cfg.Timezone)
	existing, err := galleryService.List(ctx, false)
	if err != nil {
		log.Fatalf("seed gallery: %v", err)
	}
	if len(existing) == 0 {
		for i, img := range sampleImages {
			order := i
			img.SortOrder = &order
			if _, err := galleryService.Create(ctx, img); err != nil {
				log.Fatalf("seed gallery: %v", err)
			}
		}
		log.Printf("seed gallery: %d images", len(sampleImages))
	}

	announcementService := announcements.NewService(announcements.NewRepository(cols.Announcements), cfg.Timezone)
	_, total, err := announcementService.ListAdmin(ctx, announcements.AdminListFilter{}, 1, 0)
	if err != nil {
		log.Fatalf("seed announcements: %v", err)
	}
	if total == 0 {
		for _, a := range sampleAnnouncements {
			if _, err := announcementService.Create(ctx, a); err != nil {
				log.Fatalf("seed announcements: %v", err)
			}
		}
		log.Printf("seed announcements: %d items", len(sampleAnnouncements))
	}

	log.Println("seed completed")
}

func seedAdmin(ctx context.Context, users admin.UserRepository, cfg *config.Config) error {
	username := strings.ToLower(strings.TrimSpace(cfg.AdminUser))
	if username == "" || cfg.AdminPassword == "" {
		log.Printf("seed admin: ADMIN_PASSWORD missing, skipping %q", username)
		return nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	u, err := users.UpsertAdmin(ctx, username, hash, time.Now().In(cfg.Timezone))
	if err != nil {
		return err
	}
	log.Printf("seed admin: %s ready", u.Username)
	return nil
}
