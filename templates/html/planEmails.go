package templates

import "fmt"

// RenderPlanExpiryReminderEmail generates the HTML for the reminder sent
// before a subscription plan lapses
func RenderPlanExpiryReminderEmail(name, planName string, daysLeft int) string {
	body := fmt.Sprintf(`Hi %s,

Your %s plan expires in %d day(s).

When your plan lapses, the listings it covers are moved off the marketplace until you renew. Renew from your dashboard to keep your vehicles visible to buyers.`,
		name, planName, daysLeft)
	return RenderGenericEmail("Your plan is about to expire", body)
}

// RenderListingsRetiredEmail generates the HTML for the notice sent after
// a lapsed plan's listings have been taken off the marketplace
func RenderListingsRetiredEmail(name, planName string, retiredCount int) string {
	body := fmt.Sprintf(`Hi %s,

Your %s plan has expired and %d of your listing(s) have been taken off the marketplace.

Renew your plan from your dashboard to bring them back. Your listing details are kept and will be restored exactly as you left them.`,
		name, planName, retiredCount)
	return RenderGenericEmail("Your listings are no longer visible", body)
}
