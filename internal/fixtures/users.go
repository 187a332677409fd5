package fixtures

import "startup_market/internal/model"

const DemoPassword = "demo-password"

// DemoUser returns the demo account for role, or false for roles without one.
func DemoUser(role string) (model.User, bool) {
	switch role {
	case model.RoleBuyer:
		return model.User{
			Name:      "Arjun Mehta",
			Email:     "buyer@demo.com",
			Role:      model.RoleBuyer,
			KYCStatus: model.KYCApproved,
			Phone:     "9876543210",
			Company:   "TechVentures India",
			Bio:       "Serial entrepreneur and angel investor looking for promising startups in the SaaS and EdTech space.",
		}, true
	case model.RoleSeller:
		return model.User{
			Name:      "Priya Sharma",
			Email:     "seller@demo.com",
			Role:      model.RoleSeller,
			KYCStatus: model.KYCApproved,
			Phone:     "8765432109",
			Company:   "InnovateTech Solutions",
			Bio:       "Founder of multiple successful startups. Currently looking to exit my SaaS platform to focus on new ventures.",
		}, true
	}
	return model.User{}, false
}
