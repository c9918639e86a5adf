package main

type Settings struct {
	Port          int    `env:"PORT,default=5001"`
	MongoURI      string `env:"MONGODB_URI,required=true"`
	JWTSecret     string `env:"JWT_SECRET,required=true"`
	UploadDir     string `env:"UPLOAD_DIR,default=uploads"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN,default=http://localhost:5173"`
	LogEncoding   string `env:"LOG_ENCODING,default=console"`
	LogFile       string `env:"LOG_FILE"`
	SecureCookies bool   `env:"SECURE_COOKIES,default=false"`
}
