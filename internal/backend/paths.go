package backend

// Auth endpoints
const (
	PathSignIn         = "/auth/sign-in"
	PathRegister       = "/auth/register"
	PathVerifyCode     = "/auth/verify-code"
	PathForgotPassword = "/auth/forgot-password"
	PathResetPassword  = "/auth/reset-password"
)

// Product endpoints. The backend spells the category route "catgory-unique".
const (
	PathCategoryUnique = "/product/catgory-unique"
	PathFilters        = "/product/filters"
	PathProduct        = "/product/%s"
	PathAddCart        = "/product/addcart/%s/%s"
)

// Order endpoints
const (
	PathMyOrders    = "/order/my-orders"
	PathOrderFilter = "/order/filter"
	PathOrderSearch = "/order/search"
	PathOrder       = "/order/%s"
	PathOrderStatus = "/order/%s/status"
	PathOrderCancel = "/order/cancel/%s"
	PathOrderRefund = "/order/refund/%s"
)

// Delivery endpoints
const (
	PathCreateDeliveryBoy = "/delivery/create-delivery-boy"
	PathMyDeliveries      = "/delivery/mydeliveries"
	PathWeeklyDeliveries  = "/delivery/weekly-deliveries"
	PathRating            = "/delivery/rating"
)
