package config

// SuiteData is the input the regression cases feed into the shop
type SuiteData struct {
	Username string
	Password string
	Product  string
}

// LoadSuiteData loads test data from environment variables, falling back to the stock fixture values
func LoadSuiteData(getenv func(string) string) SuiteData {
	data := SuiteData{
		Username: getenv("SHOPCHECK_USERNAME"),
		Password: getenv("SHOPCHECK_PASSWORD"),
		Product:  getenv("SHOPCHECK_PRODUCT"),
	}
	if data.Username == "" {
		data.Username = "user"
	}
	if data.Password == "" {
		data.Password = "pass"
	}
	if data.Product == "" {
		data.Product = "Product"
	}
	return data
}
