// Package fixtures holds the demo data used by demo mode and the client
// catalog loader.
package fixtures

import (
	"time"

	"startup_market/internal/model"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// DemoListings returns a fresh copy of the four demo listings.
func DemoListings() []model.Listing {
	return []model.Listing{
		{
			ID:             1,
			Title:          "SaaS Analytics Platform",
			Description:    "AI-powered analytics platform for e-commerce businesses with 500+ active users.",
			MonthlyRevenue: 50000,
			AskingPrice:    500000,
			Category:       "SaaS",
			Location:       "Bangalore",
			Verified:       true,
			Seller:         model.SellerInfo{Name: "Tech Entrepreneur", Verified: true},
			Tags:           []string{"Analytics", "AI", "E-commerce"},
			Status:         model.ListingStatusApproved,
			CreatedAt:      day(2024, time.January, 15),
		},
		{
			ID:             2,
			Title:          "Food Delivery Mobile App",
			Description:    "Popular food delivery app serving 3 cities with strong user base and revenue growth.",
			MonthlyRevenue: 120000,
			AskingPrice:    1200000,
			Category:       "Mobile App",
			Location:       "Mumbai",
			Verified:       true,
			Seller:         model.SellerInfo{Name: "Startup Founder", Verified: true},
			Tags:           []string{"Food", "Delivery", "Mobile"},
			Status:         model.ListingStatusApproved,
			CreatedAt:      day(2024, time.January, 10),
		},
		{
			ID:             3,
			Title:          "EdTech Learning Platform",
			Description:    "Online learning platform with 10,000+ students and comprehensive course library.",
			MonthlyRevenue: 80000,
			AskingPrice:    800000,
			Category:       "EdTech",
			Location:       "Delhi",
			Verified:       false,
			Seller:         model.SellerInfo{Name: "Education Expert", Verified: true},
			Tags:           []string{"Education", "Online Learning", "Courses"},
			Status:         model.ListingStatusApproved,
			CreatedAt:      day(2024, time.January, 5),
		},
		{
			ID:             4,
			Title:          "E-commerce Fashion Store",
			Description:    "Trendy fashion e-commerce store with strong social media presence and loyal customers.",
			MonthlyRevenue: 200000,
			AskingPrice:    1500000,
			Category:       "E-commerce",
			Location:       "Pune",
			Verified:       true,
			Seller:         model.SellerInfo{Name: "Fashion Entrepreneur", Verified: true},
			Tags:           []string{"Fashion", "E-commerce", "Social Media"},
			Status:         model.ListingStatusApproved,
			CreatedAt:      day(2024, time.January, 1),
		},
	}
}
