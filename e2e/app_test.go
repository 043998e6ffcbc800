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
	err := suite.page.Locator(".login-link").Click()
	require.NoError(suite.T(), err, "failed to open login page")

	err = suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "login form not visible")

	err = suite.page.Locator("input[name=username]").Fill("testadmin")
	require.NoError(suite.T(), err, "failed to fill username")

	err = suite.page.Locator("input[name=password]").Fill("testpass123")
	require.NoError(suite.T(), err, "failed to fill password")

	err = suite.page.Locator(".login-btn").Click()
	require.NoError(suite.T(), err, "failed to click login")

	// Back on the listing with the add form visible
	err = suite.expect.Locator(suite.page.Locator(".add-form")).ToBeVisible()
	require.NoError(suite.T(), err, "did not land on listing after login")
}

func (suite *E2ETestSuite) TestCompleteAdminFlow() {
	// Empty listing before login
	err := suite.expect.Locator(suite.page.Locator(".empty")).ToBeVisible()
	require.NoError(suite.T(), err, "expected the empty-listing state")

	suite.login()

	// Create an entry
	err = suite.page.Locator("input[name=title]").Fill("Hello")
	require.NoError(suite.T(), err, "failed to fill title")

	err = suite.page.Locator("textarea[name=text]").Fill("World")
	require.NoError(suite.T(), err, "failed to fill text")

	err = suite.page.Locator(".add-btn").Click()
	require.NoError(suite.T(), err, "failed to submit entry")

	err = suite.expect.Locator(suite.page.Locator(".entry")).ToHaveCount(1)
	require.NoError(suite.T(), err, "entry count mismatch after create")

	entry := suite.page.Locator(".entry").First()
	err = suite.expect.Locator(entry.Locator("h2")).ToHaveText("Hello")
	require.NoError(suite.T(), err, "title mismatch")

	// Edit it
	err = entry.Locator(".edit-link").Click()
	require.NoError(suite.T(), err, "failed to open edit form")

	err = suite.page.Locator("input[name=title]").Fill("Hello Edited")
	require.NoError(suite.T(), err, "failed to change title")

	err = suite.page.Locator(".save-btn").Click()
	require.NoError(suite.T(), err, "failed to save edit")

	err = suite.expect.Locator(suite.page.Locator(".entry h2").First()).ToHaveText("Hello Edited")
	require.NoError(suite.T(), err, "edited title not shown")

	// Delete it via the confirmation page
	err = suite.page.Locator(".entry .delete-link").First().Click()
	require.NoError(suite.T(), err, "failed to open delete confirmation")

	err = suite.page.Locator(".confirm-delete-btn").Click()
	require.NoError(suite.T(), err, "failed to confirm delete")

	err = suite.expect.Locator(suite.page.Locator(".empty")).ToBeVisible()
	require.NoError(suite.T(), err, "listing not empty after delete")

	// Log out
	err = suite.page.Locator(".logout-link").Click()
	require.NoError(suite.T(), err, "failed to log out")

	err = suite.expect.Locator(suite.page.Locator(".login-link")).ToBeVisible()
	require.NoError(suite.T(), err, "login link not shown after logout")
}

func (suite *E2ETestSuite) TestRejectedLogin() {
	err := suite.page.Locator(".login-link").Click()
	require.NoError(suite.T(), err, "failed to open login page")

	err = suite.page.Locator("input[name=username]").Fill("testadmin")
	require.NoError(suite.T(), err)

	err = suite.page.Locator("input[name=password]").Fill("wrong")
	require.NoError(suite.T(), err)

	err = suite.page.Locator(".login-btn").Click()
	require.NoError(suite.T(), err)

	err = suite.expect.Locator(suite.page.Locator(".error")).ToHaveText("Invalid username or password")
	require.NoError(suite.T(), err, "generic failure message not shown")
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
