package e2e

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite provides a test suite for end-to-end tests
type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	browser, err := pw.Chromium.Launch()
	require.NoError(suite.T(), err, "could not launch chromium")
	suite.browser = browser

	suite.expect = playwright.NewPlaywrightAssertions()
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.browser != nil {
		suite.browser.Close()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

// SetupTest runs before each test
func (suite *E2ETestSuite) SetupTest() {
	page, err := suite.browser.NewPage()
	require.NoError(suite.T(), err, "could not create page")
	suite.page = page

	_, err = suite.page.Goto(appURL)
	require.NoError(suite.T(), err, "could not navigate to app")
}

// TearDownTest runs after each test
func (suite *E2ETestSuite) TearDownTest() {
	if suite.page != nil {
		suite.page.Close()
	}
}

func (suite *E2ETestSuite) login() {
	// Wait for login form
	err := suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "login form not visible")

	// Fill in credentials
	err = suite.page.Locator("input[name=email]").Fill("test@example.com")
	require.NoError(suite.T(), err, "failed to fill email")

	err = suite.page.Locator("input[name=password]").Fill("testpass123")
	require.NoError(suite.T(), err, "failed to fill password")

	// Submit login
	err = suite.page.Locator(".login-btn").Click()
	require.NoError(suite.T(), err, "failed to click login")

	// Wait for redirect to the dashboard
	err = suite.expect.Locator(suite.page.Locator(".list-screen")).ToBeVisible()
	require.NoError(suite.T(), err, "did not land on the dashboard after login")
}

func (suite *E2ETestSuite) TestCompleteCourierFlow() {
	// Login
	suite.login()

	// Verify dashboard sections
	err := suite.expect.Locator(suite.page.Locator(".goal")).ToBeVisible()
	require.NoError(suite.T(), err, "goal section not visible")

	err = suite.expect.Locator(suite.page.Locator(".maintenance")).ToBeVisible()
	require.NoError(suite.T(), err, "maintenance section not visible")

	// Record a day's earnings
	err = suite.page.Locator("select[name=kind]").First().Focus()
	require.NoError(suite.T(), err, "failed to focus kind select")

	_, err = suite.page.Locator("select[name=kind]").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{"income"},
	})
	require.NoError(suite.T(), err, "failed to select kind")

	err = suite.page.Locator("input[name=amount]").Fill("150,50")
	require.NoError(suite.T(), err, "failed to fill amount")

	err = suite.page.Locator("input[name=description]").Fill("Entregas do dia")
	require.NoError(suite.T(), err, "failed to fill description")

	err = suite.page.Locator(".add-transaction button[type=submit]").Click()
	require.NoError(suite.T(), err, "failed to submit transaction")

	// Verify in list
	err = suite.expect.Locator(suite.page.Locator(".tx")).ToHaveCount(1)
	require.NoError(suite.T(), err, "transaction count mismatch")

	item := suite.page.Locator(".tx").First()
	err = suite.expect.Locator(item.Locator(".tx-desc")).ToHaveText("Entregas do dia")
	require.NoError(suite.T(), err, "description mismatch")

	err = suite.expect.Locator(item.Locator(".tx-amount")).ToContainText("150,50")
	require.NoError(suite.T(), err, "amount mismatch")

	// Today's income card reflects the entry
	err = suite.expect.Locator(suite.page.Locator(".stat-value").First()).ToContainText("150,50")
	require.NoError(suite.T(), err, "daily income card mismatch")
}

func (suite *E2ETestSuite) TestFuelPurchaseMovesOdometer() {
	suite.login()

	_, err := suite.page.Locator("select[name=kind]").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{"expense"},
	})
	require.NoError(suite.T(), err, "failed to select kind")

	err = suite.page.Locator("input[name=amount]").Fill("95,00")
	require.NoError(suite.T(), err, "failed to fill amount")

	err = suite.page.Locator("input[name=description]").Fill("Gasolina")
	require.NoError(suite.T(), err, "failed to fill description")

	// Open the fuel fields and fill them
	err = suite.page.Locator(".fuel-fields summary").Click()
	require.NoError(suite.T(), err, "failed to open fuel fields")

	err = suite.page.Locator("input[name=fuel_litres]").Fill("10,5")
	require.NoError(suite.T(), err, "failed to fill litres")

	err = suite.page.Locator("input[name=odometer_km]").Fill("850")
	require.NoError(suite.T(), err, "failed to fill odometer")

	err = suite.page.Locator(".add-transaction button[type=submit]").Click()
	require.NoError(suite.T(), err, "failed to submit transaction")

	// Maintenance card shows the new reading
	err = suite.expect.Locator(suite.page.Locator(".maint-value")).ToContainText("850 km")
	require.NoError(suite.T(), err, "odometer reading mismatch")
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
