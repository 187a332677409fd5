package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"startup_market/internal/explore"
	"startup_market/internal/model"
	"startup_market/internal/store"
	"startup_market/internal/utils"
)

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("-email and -password are required")
	}

	user, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func runDemoLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("demo-login")
	role := fs.String("role", model.RoleBuyer, "BUYER or SELLER")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.client.DemoLogin(ctx, strings.ToUpper(*role))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as demo %s %s\n", strings.ToLower(user.Role), user.Name)
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("whoami")
	refresh := fs.Bool("refresh", false, "reload the profile from the server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *refresh && a.session.IsAuthenticated() {
		if _, err := a.client.Profile(ctx); err != nil {
			return err
		}
	}
	s := a.session.State()
	if !s.IsAuthenticated || s.User == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\nrole: %s\nkyc:  %s\n", s.User.Name, s.User.Email, s.User.Role, s.User.KYCStatus)
	return nil
}

func runExplore(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("explore")
	category := fs.String("category", "", "category filter")
	location := fs.String("location", "", "location filter")
	keyword := fs.String("keyword", "", "search title and description")
	minPrice := fs.Int64("min", 0, "minimum asking price in rupees")
	maxPrice := fs.Int64("max", 0, "maximum asking price in rupees")
	sortBy := fs.String("sort", string(model.SortNewest), "newest, oldest, price-low, price-high, revenue-high or revenue-low")
	page := fs.Int("page", 1, "page number")
	demo := fs.Bool("demo", false, "use the built-in demo listings instead of the server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	catalog := store.NewCatalogStore(pageSizeFromEnv())
	if *demo {
		catalog.InitializeDemoData()
	} else if err := catalog.Refresh(ctx, a.client); err != nil {
		return fmt.Errorf("load listings: %w", err)
	}

	patch := model.FilterPatch{Category: category, Location: location, Keyword: keyword}
	if *minPrice > 0 {
		patch.MinPrice = minPrice
	}
	if *maxPrice > 0 {
		patch.MaxPrice = maxPrice
	}
	catalog.PatchFilters(patch)
	catalog.SetSortBy(model.SortKey(*sortBy))
	catalog.SetCurrentPage(*page)

	printPage(a, catalog.View())
	return nil
}

func printPage(a *app, page explore.Page) {
	if page.Total == 0 {
		fmt.Fprintln(a.out, "No listings match these filters.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tLOCATION\tASKING\tMONTHLY REV\tMULTIPLE")
	for _, l := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Title, l.Category, l.Location,
			utils.FormatCurrency(l.AskingPrice),
			utils.FormatCurrency(l.MonthlyRevenue),
			explore.FormatMultiple(l.AskingPrice, l.MonthlyRevenue))
	}
	tw.Flush()
	fmt.Fprintf(a.out, "\nPage %d of %d (%d listings)\n", page.Page, page.TotalPages, page.Total)
}

func runOffer(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("offer")
	listingID := fs.Int64("listing", 0, "listing ID")
	amount := fs.Int64("amount", 0, "offer amount in rupees (default: 90% of asking price)")
	message := fs.String("message", "", "message to the seller (at least 50 characters)")
	timeline := fs.String("timeline", "30 days", "closing timeline")
	financing := fs.String("financing", "cash", "financing type")
	validDays := fs.Int("valid-days", 7, "days until the offer expires")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *listingID <= 0 {
		return errors.New("-listing is required")
	}
	if !a.session.IsAuthenticated() {
		return errors.New("sign in first with login or demo-login")
	}

	detail, err := a.client.Listing(ctx, *listingID)
	if err != nil {
		return err
	}
	if *amount == 0 {
		*amount = detail.Metrics.SuggestedOffer
	}

	offer, err := a.client.SubmitOffer(ctx, model.CreateOfferRequest{
		ListingID:     *listingID,
		Amount:        *amount,
		Message:       *message,
		Timeline:      *timeline,
		FinancingType: *financing,
		ExpiresAt:     time.Now().Add(time.Duration(*validDays) * 24 * time.Hour),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Offer #%d of %s on %q submitted (%s)\n",
		offer.ID, utils.FormatCurrency(offer.Amount), detail.Title, offer.Status)
	return nil
}

func runStats(ctx context.Context, a *app, _ []string) error {
	stats, err := a.client.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Active listings:   %d\nVerified listings: %d\nTotal asking:      %s\nAverage asking:    %s\n",
		stats.ActiveListings, stats.VerifiedListings,
		utils.FormatCurrency(stats.TotalAskingValue), utils.FormatCurrency(stats.AverageAskingPrice))
	return nil
}
