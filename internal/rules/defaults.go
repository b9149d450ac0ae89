package rules

// defaultPatterns are the legacy order storage access patterns, in evaluation order.
var defaultPatterns = []struct {
	expr        string
	category    string
	description string
}{
	// Order post type identifiers
	{`['"]post_type['"]\s*=>\s*['"]shop_order['"]`, "order_post_type", "Order post type in array"},
	{`['"]post_type['"]\s*=\s*['"]shop_order['"]`, "order_post_type", "Order post type in query"},
	{`post_type\s*=\s*['"]shop_order['"]`, "order_post_type", "Order post type in query string"},
	{`['"]post_type['"]\s*=>\s*['"]shop_order_refund['"]`, "order_post_type", "Order refund post type in array"},
	{`['"]post_type['"]\s*=\s*['"]shop_order_refund['"]`, "order_post_type", "Order refund post type in query"},
	{`post_type\s*=\s*['"]shop_order_refund['"]`, "order_post_type", "Order refund post type in query string"},

	// Core table references
	{`\$wpdb->(?:prefix\s*\.\s*)?['"]?posts['"]?`, "db_table", "Direct reference to posts table"},
	{`\$wpdb->(?:prefix\s*\.\s*)?['"]?postmeta['"]?`, "db_table", "Direct reference to postmeta table"},
	{`(?:FROM|JOIN|UPDATE|INTO)\s+(?:\w+_)?posts\b`, "db_query", "SQL query referencing posts table"},
	{`(?:FROM|JOIN|UPDATE|INTO)\s+(?:\w+_)?postmeta\b`, "db_query", "SQL query referencing postmeta table"},
	{`\bwp_posts\b`, "db_table", "Direct wp_posts table name"},
	{`\bwp_postmeta\b`, "db_table", "Direct wp_postmeta table name"},

	// Legacy post access
	{`get_post\s*\(\s*\$(?:order|order_id)`, "wp_function", "get_post with order variable"},
	{`get_post_meta\s*\(\s*\$(?:order|order_id)`, "wp_function", "get_post_meta with order variable"},
	{`update_post_meta\s*\(\s*\$(?:order|order_id)`, "wp_function", "update_post_meta with order variable"},
	{`delete_post_meta\s*\(\s*\$(?:order|order_id)`, "wp_function", "delete_post_meta with order variable"},
	{`new\s+WP_Query\s*\(\s*\{?[^}]*['"]post_type['"]\s*=>\s*['"]shop_order['"]`, "wp_class", "WP_Query with shop_order post type"},
	{`new\s+WP_Query\s*\(\s*\{?[^}]*['"]post_type['"]\s*=>\s*['"]shop_order_refund['"]`, "wp_class", "WP_Query with shop_order_refund post type"},
	{`get_posts\s*\(\s*\{?[^}]*['"]post_type['"]\s*=>\s*['"]shop_order['"]`, "wp_function", "get_posts with shop_order post type"},
	{`get_posts\s*\(\s*\{?[^}]*['"]post_type['"]\s*=>\s*['"]shop_order_refund['"]`, "wp_function", "get_posts with shop_order_refund post type"},

	// Legacy WooCommerce order APIs
	{`new\s+WC_Order\s*\(`, "wc_class", "WC_Order instantiation"},
	{`new\s+WC_Order_Query\s*\(`, "wc_class", "WC_Order_Query instantiation"},
}

// defaultLiterals are matched after the patterns.
var defaultLiterals = []string{
	"WC()->order_factory",
	"woocommerce_order_data_store_cpt",
	"woocommerce_order_get_items",
	"woocommerce_before_order_object_save",

	// legacy REST API endpoints
	"/wc/v1/orders",
	"/wc/v2/orders",
	"/wc-api/v3/orders",
	"wc-api=wc-orders",
}

var defaultSuppressions = []string{
	// HPOS-aware WooCommerce functions
	"wc_get_order",
	"wc_update_order",
	"wc_delete_order",
	"wc_get_orders",
	"wc_get_order_id_by_order_key",
	"wc_get_order_types",
	"wc_get_order_statuses",
	"WC_Order_Data_Store_CPT",
	"WC_Order_Data_Store_Custom_Table",

	// comments and docblocks
	"// wp_posts",
	"// wp_postmeta",
	"/* wp_posts",
	"/* wp_postmeta",
	"* wp_posts",
	"* wp_postmeta",
	"// $wpdb->posts",
	"// $wpdb->postmeta",
	"/* $wpdb->posts",
	"/* $wpdb->postmeta",
	"* $wpdb->posts",
	"* $wpdb->postmeta",
	"@param",
	"@return",
	"@var",
	"@since",
	"Example:",
	"example:",
	"Example query:",
	"example query:",

	// declarations
	"function",
	"class",
	"interface",
	"trait",
	"abstract",
	"extends",
	"implements",

	// other post types
	"post_type = 'product'",
	`post_type = "product"`,
	"post_type = 'page'",
	`post_type = "page"`,
	"post_type = 'post'",
	`post_type = "post"`,

	// schema and install logic
	"CREATE TABLE",
	"ALTER TABLE",
	"DROP TABLE",
	"dbDelta",

	// debug and test code
	"test_",
	"debug_",
	"is_admin()",
	"if ( is_admin() )",
	"if (is_admin())",
}

// Default returns the HPOS rule set: legacy order storage patterns and literals plus the built-in suppressions.
func Default() *RuleSet {
	rs := New()
	for _, p := range defaultPatterns {
		_ = rs.Register(MustPattern(p.expr, p.category, p.description))
	}
	for _, term := range defaultLiterals {
		_ = rs.RegisterLiteral(term)
	}
	for _, s := range defaultSuppressions {
		rs.RegisterSuppression(s)
	}
	return rs
}
